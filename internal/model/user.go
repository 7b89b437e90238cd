package model

import "time"

// Admin roles.  ADMIN may manage users; STAFF may only operate on
// reservations and registrations.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// AdminUser represents a dashboard account as stored in the `admin_users`
// table.  The password is never stored in clear text.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or STAFF.
//  IsActive     – inactive users cannot log in.
//  CreatedAt    – timestamp of creation.
type AdminUser struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

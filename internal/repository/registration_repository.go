package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/festival-registration/internal/model"
)

// RegistrationStore persists festival registrations.  Exactly one
// implementation is active per process; the two are never consulted for the
// same check.
type RegistrationStore interface {
	// EmailExists reports whether email (compared case-insensitively) is
	// already registered.
	EmailExists(ctx context.Context, email string) (bool, error)
	// Create stores reg.  It returns ErrEmailExists on a duplicate email.
	Create(ctx context.Context, reg *model.Registration) error
	List(ctx context.Context) ([]model.Registration, error)
	// GetByNumber returns ErrNotFound when no registration carries number.
	GetByNumber(ctx context.Context, number string) (model.Registration, error)
}

// RegistrationRepo is the MySQL-backed RegistrationStore.
type RegistrationRepo struct{ DB *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{DB: db} }

const registrationColumns = `id, registration_number, first_name, last_name, email, phone, city,
	vehicle_make, vehicle_model, vehicle_year, vehicle_category, plate_number, COALESCE(notes, ''), created_at`

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (r *RegistrationRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM registrations WHERE email=? LIMIT 1", normalizeEmail(email)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	reg.Email = normalizeEmail(reg.Email)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO registrations (id, registration_number, first_name, last_name, email, phone, city,
			vehicle_make, vehicle_model, vehicle_year, vehicle_category, plate_number, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		reg.ID, reg.RegistrationNumber, reg.FirstName, reg.LastName, reg.Email, reg.Phone, reg.City,
		reg.VehicleMake, reg.VehicleModel, reg.VehicleYear, reg.VehicleCategory, reg.PlateNumber,
		reg.Notes, reg.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			if duplicateOn(err, "registration_number") {
				return ErrDuplicateNumber
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *RegistrationRepo) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *RegistrationRepo) GetByNumber(ctx context.Context, number string) (model.Registration, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE registration_number=? LIMIT 1", number)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Registration{}, ErrNotFound
	}
	return reg, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRegistration(s rowScanner) (model.Registration, error) {
	var reg model.Registration
	err := s.Scan(&reg.ID, &reg.RegistrationNumber, &reg.FirstName, &reg.LastName, &reg.Email,
		&reg.Phone, &reg.City, &reg.VehicleMake, &reg.VehicleModel, &reg.VehicleYear,
		&reg.VehicleCategory, &reg.PlateNumber, &reg.Notes, &reg.CreatedAt)
	return reg, err
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "1062")
}

// duplicateOn reports whether a duplicate-entry error names column's unique
// key.  MySQL 8 qualifies it as 'registrations.<key>', 5.7 does not.
func duplicateOn(err error, column string) bool {
	msg := err.Error()
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		msg = me.Message
	}
	_, key, ok := strings.Cut(msg, "for key '")
	return ok && strings.Contains(key, column)
}

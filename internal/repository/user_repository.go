package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/utils"
)

// UserStore manages admin dashboard accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.AdminUser, error)
	GetByID(ctx context.Context, id uint64) (model.AdminUser, error)
	List(ctx context.Context) ([]model.AdminUser, error)
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	Delete(ctx context.Context, id uint64) error
}

// UserRepo mirrors the 'admin_users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,role,is_active,created_at"

// Create hashes password and inserts the user, returning its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// EnsureAdmin inserts an ADMIN account with an already-hashed password
// unless the email exists.  It reports whether a row was created.  An empty
// email or hash is a no-op.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, passwordHash string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || passwordHash == "" {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO admin_users (email, password_hash, role) VALUES (?,?,?)",
		email, passwordHash, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM admin_users WHERE email=? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.AdminUser, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM admin_users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.AdminUser, error) {
	var u model.AdminUser
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// List returns every admin account ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.AdminUser, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM admin_users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AdminUser{}
	for rows.Next() {
		var u model.AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes a user.  It returns ErrNotFound when no row was affected.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM admin_users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnvUserStore serves a single bootstrap admin taken from the environment.
// It is used when no database is configured and cannot be modified.
type EnvUserStore struct {
	user model.AdminUser
}

// NewEnvUserStore builds the bootstrap store.  An empty email or hash yields a
// store in which every lookup fails with ErrNotFound.
func NewEnvUserStore(email, passwordHash string) *EnvUserStore {
	s := &EnvUserStore{}
	if email != "" && passwordHash != "" {
		s.user = model.AdminUser{
			ID:           1,
			Email:        normalizeEmail(email),
			PasswordHash: passwordHash,
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
	}
	return s
}

func (s *EnvUserStore) configured() bool { return s.user.ID != 0 }

func (s *EnvUserStore) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	if !s.configured() || !strings.EqualFold(s.user.Email, normalizeEmail(email)) {
		return model.AdminUser{}, ErrNotFound
	}
	return s.user, nil
}

func (s *EnvUserStore) GetByID(ctx context.Context, id uint64) (model.AdminUser, error) {
	if !s.configured() || id != s.user.ID {
		return model.AdminUser{}, ErrNotFound
	}
	return s.user, nil
}

func (s *EnvUserStore) List(ctx context.Context) ([]model.AdminUser, error) {
	if !s.configured() {
		return []model.AdminUser{}, nil
	}
	return []model.AdminUser{s.user}, nil
}

func (s *EnvUserStore) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	return 0, ErrReadOnly
}

func (s *EnvUserStore) Delete(ctx context.Context, id uint64) error { return ErrReadOnly }

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings; registration traffic is bursty but small.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema is applied in order by Migrate.  Statements must stay idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS registrations (
		id                  CHAR(36)     NOT NULL PRIMARY KEY,
		registration_number VARCHAR(32)  NOT NULL UNIQUE,
		first_name          VARCHAR(100) NOT NULL,
		last_name           VARCHAR(100) NOT NULL,
		email               VARCHAR(255) NOT NULL UNIQUE,
		phone               VARCHAR(50)  NOT NULL DEFAULT '',
		city                VARCHAR(100) NOT NULL DEFAULT '',
		vehicle_make        VARCHAR(100) NOT NULL,
		vehicle_model       VARCHAR(100) NOT NULL,
		vehicle_year        INT          NOT NULL DEFAULT 0,
		vehicle_category    VARCHAR(50)  NOT NULL DEFAULT '',
		plate_number        VARCHAR(32)  NOT NULL DEFAULT '',
		notes               TEXT,
		created_at          DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255)    NOT NULL UNIQUE,
		password_hash VARCHAR(255)    NOT NULL,
		role          VARCHAR(16)     NOT NULL DEFAULT 'STAFF',
		is_active     TINYINT(1)      NOT NULL DEFAULT 1,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the registrations and admin_users tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

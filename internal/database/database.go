// Package database manages the Postgres connection and schema bootstrap.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// NewPostgresConnection opens a Postgres connection pool and verifies it
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      VARCHAR(80) NOT NULL,
			email         VARCHAR(160) NOT NULL UNIQUE,
			password_hash VARCHAR(300) NOT NULL,
			is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			otp           VARCHAR(6),
			otp_expiry    TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS token_blocklist (
			id         BIGSERIAL PRIMARY KEY,
			jti        VARCHAR(36) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id             BIGSERIAL PRIMARY KEY,
			user_id        BIGINT NOT NULL UNIQUE REFERENCES users(id),
			name           VARCHAR(100) NOT NULL,
			plan           VARCHAR(50) NOT NULL DEFAULT 'Free',
			balance        DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_payments INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			bill_type  VARCHAR(50) NOT NULL,
			amount_due DOUBLE PRECISION NOT NULL CHECK (amount_due >= 0),
			due_date   DATE NOT NULL,
			status     VARCHAR(20) NOT NULL DEFAULT 'Pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			plan       VARCHAR(50) NOT NULL,
			amount     DOUBLE PRECISION NOT NULL,
			status     VARCHAR(20) NOT NULL DEFAULT 'Paid',
			provider   VARCHAR(50) NOT NULL,
			payment_id VARCHAR(100),
			due_date   DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			bill_id    BIGINT REFERENCES bills(id),
			amount     DOUBLE PRECISION NOT NULL,
			method     VARCHAR(30) NOT NULL,
			status     VARCHAR(20) NOT NULL DEFAULT 'Success',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			message    VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_user_status ON bills(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

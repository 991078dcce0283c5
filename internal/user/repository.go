package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles user and profile data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified user into the database
func (r *Repository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, is_verified, is_admin, otp, otp_expiry, created_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username, email, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.IsAdmin,
		&user.OTP,
		&user.OTPExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by their email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_verified, is_admin, otp, otp_expiry, created_at
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.IsAdmin,
		&user.OTP,
		&user.OTPExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_verified, is_admin, otp, otp_expiry, created_at
		FROM users
		WHERE id = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.IsAdmin,
		&user.OTP,
		&user.OTPExpiry,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListVerifiedNonAdmins retrieves all verified, non-admin users
func (r *Repository) ListVerifiedNonAdmins(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_verified, is_admin, otp, otp_expiry, created_at
		FROM users
		WHERE is_verified = TRUE AND is_admin = FALSE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.IsVerified,
			&user.IsAdmin,
			&user.OTP,
			&user.OTPExpiry,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}

// SetOTP stores a fresh one-time passcode and its expiry for the user
func (r *Repository) SetOTP(ctx context.Context, userID int64, otp string, expiry time.Time) error {
	query := `UPDATE users SET otp = $2, otp_expiry = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, otp, expiry); err != nil {
		return fmt.Errorf("failed to set OTP: %w", err)
	}
	return nil
}

// MarkVerified flags the user as verified and clears the OTP
func (r *Repository) MarkVerified(ctx context.Context, userID int64) error {
	query := `UPDATE users SET is_verified = TRUE, otp = NULL, otp_expiry = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// CreateProfile inserts the billing profile for a newly verified user
func (r *Repository) CreateProfile(ctx context.Context, userID int64, name string) (*Profile, error) {
	query := `
		INSERT INTO user_profiles (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, plan, balance, total_amount, total_payments
	`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Plan,
		&profile.Balance,
		&profile.TotalAmount,
		&profile.TotalPayments,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// GetProfileByUserID retrieves the billing profile for a user
func (r *Repository) GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error) {
	query := `
		SELECT id, user_id, name, plan, balance, total_amount, total_payments
		FROM user_profiles
		WHERE user_id = $1
	`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Plan,
		&profile.Balance,
		&profile.TotalAmount,
		&profile.TotalPayments,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// RevokeToken records a token ID in the blocklist
func (r *Repository) RevokeToken(ctx context.Context, jti string) error {
	query := `INSERT INTO token_blocklist (jti) VALUES ($1) ON CONFLICT (jti) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, jti); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token ID appears in the blocklist
func (r *Repository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM token_blocklist WHERE jti = $1`
	if err := r.db.QueryRowContext(ctx, query, jti).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check token blocklist: %w", err)
	}
	return count > 0, nil
}

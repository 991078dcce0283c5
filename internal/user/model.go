package user

import "time"

// User represents a registered account
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	IsAdmin      bool       `json:"is_admin"`
	OTP          *string    `json:"-"`
	OTPExpiry    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Profile is the 1:1 billing extension of a user, created on verification.
// Totals are additive: each successful settlement increments the payment
// count and adds the amount paid.
type Profile struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	Name          string  `json:"name"`
	Plan          string  `json:"plan"`
	Balance       float64 `json:"balance"`
	TotalAmount   float64 `json:"total_amount"`
	TotalPayments int     `json:"total_payments"`
}

package bill

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles bill data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new bill repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending bill
func (r *Repository) Create(ctx context.Context, userID int64, billType string, amountDue float64, dueDate time.Time) (*Bill, error) {
	query := `
		INSERT INTO bills (user_id, bill_type, amount_due, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, bill_type, amount_due, due_date, status, created_at
	`

	bill := &Bill{}
	err := r.db.QueryRowContext(ctx, query, userID, billType, amountDue, dueDate).Scan(
		&bill.ID,
		&bill.UserID,
		&bill.BillType,
		&bill.AmountDue,
		&bill.DueDate,
		&bill.Status,
		&bill.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	return bill, nil
}

// GetByIDAndUser retrieves a bill owned by the given user
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID int64) (*Bill, error) {
	query := `
		SELECT id, user_id, bill_type, amount_due, due_date, status, created_at
		FROM bills
		WHERE id = $1 AND user_id = $2
	`

	bill := &Bill{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&bill.ID,
		&bill.UserID,
		&bill.BillType,
		&bill.AmountDue,
		&bill.DueDate,
		&bill.Status,
		&bill.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// ListByUser retrieves all bills for a user, newest first
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*Bill, error) {
	query := `
		SELECT id, user_id, bill_type, amount_due, due_date, status, created_at
		FROM bills
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		bill := &Bill{}
		if err := rows.Scan(
			&bill.ID,
			&bill.UserID,
			&bill.BillType,
			&bill.AmountDue,
			&bill.DueDate,
			&bill.Status,
			&bill.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, nil
}

// HasBillForMonth reports whether the user already has a bill created in
// the given calendar month
func (r *Repository) HasBillForMonth(ctx context.Context, userID int64, year int, month time.Month) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM bills
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3
	`
	if err := r.db.QueryRowContext(ctx, query, userID, year, int(month)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check bills for month: %w", err)
	}
	return count > 0, nil
}

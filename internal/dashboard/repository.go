package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BillSummary is a bill row as the dashboard reads it
type BillSummary struct {
	ID        int64
	BillType  string
	AmountDue float64
	DueDate   time.Time
	Status    string
}

// TransactionRow is a transaction joined with its bill's category, when the
// bill still exists
type TransactionRow struct {
	ID        int64
	Amount    float64
	Status    string
	CreatedAt time.Time
	BillType  *string
}

// Repository runs the read-only dashboard queries
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new dashboard repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CurrentBill returns the most recently created pending bill, or nil
func (r *Repository) CurrentBill(ctx context.Context, userID int64) (*BillSummary, error) {
	query := `
		SELECT id, bill_type, amount_due, due_date, status
		FROM bills
		WHERE user_id = $1 AND status = 'Pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	bill := &BillSummary{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&bill.ID,
		&bill.BillType,
		&bill.AmountDue,
		&bill.DueDate,
		&bill.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current bill: %w", err)
	}

	return bill, nil
}

// UpcomingBills returns all pending bills ordered by ascending due date
func (r *Repository) UpcomingBills(ctx context.Context, userID int64) ([]*BillSummary, error) {
	query := `
		SELECT id, bill_type, amount_due, due_date, status
		FROM bills
		WHERE user_id = $1 AND status = 'Pending'
		ORDER BY due_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming bills: %w", err)
	}
	defer rows.Close()

	var bills []*BillSummary
	for rows.Next() {
		bill := &BillSummary{}
		if err := rows.Scan(
			&bill.ID,
			&bill.BillType,
			&bill.AmountDue,
			&bill.DueDate,
			&bill.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, nil
}

// Transactions returns the user's transactions, most recent first, each
// annotated with its bill's category when the bill still exists
func (r *Repository) Transactions(ctx context.Context, userID int64) ([]*TransactionRow, error) {
	query := `
		SELECT t.id, t.amount, t.status, t.created_at, b.bill_type
		FROM transactions t
		LEFT JOIN bills b ON t.bill_id = b.id
		WHERE t.user_id = $1
		ORDER BY t.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*TransactionRow
	for rows.Next() {
		txn := &TransactionRow{}
		if err := rows.Scan(
			&txn.ID,
			&txn.Amount,
			&txn.Status,
			&txn.CreatedAt,
			&txn.BillType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paysub/paysub/internal/bill"
	"github.com/paysub/paysub/internal/notification"
)

// Repository persists payments and transactions, and runs the atomic
// settlement unit
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SettleParams describes one settlement unit
type SettleParams struct {
	Bill           *bill.Bill
	Penalty        int64
	Provider       string
	Method         string
	PaymentRef     *string
	PenaltyMessage string // notification emitted when a penalty was applied
	SuccessMessage string
}

// Settle runs the whole settlement as one transaction: flip the bill to
// Paid, write the Payment and the successful Transaction, bump the profile
// totals and append the notifications. Every write commits together or not
// at all.
//
// The status flip is a compare-and-set on Pending, which serializes
// concurrent attempts on the same bill: the loser sees zero rows updated
// and Settle returns (nil, nil) without writing anything.
func (r *Repository) Settle(ctx context.Context, p *SettleParams) (*Payment, error) {
	total := p.Bill.AmountDue + float64(p.Penalty)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET status = $2, amount_due = $3 WHERE id = $1 AND status = $4`,
		p.Bill.ID, bill.StatusPaid, total, bill.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark bill paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Bill was settled by someone else first
		return nil, nil
	}

	if p.PenaltyMessage != "" {
		if err := notification.CreateTx(ctx, tx, p.Bill.UserID, p.PenaltyMessage); err != nil {
			return nil, err
		}
	}

	payment := &Payment{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO payments (user_id, plan, amount, status, provider, payment_id, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, plan, amount, status, provider, payment_id, due_date, created_at`,
		p.Bill.UserID, p.Bill.BillType, total, PaymentStatusPaid, p.Provider, p.PaymentRef, p.Bill.DueDate,
	).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Plan,
		&payment.Amount,
		&payment.Status,
		&payment.Provider,
		&payment.PaymentRef,
		&payment.DueDate,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, bill_id, amount, method, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.Bill.UserID, p.Bill.ID, total, p.Method, TxnStatusSuccess,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_profiles
		 SET total_payments = total_payments + 1, total_amount = total_amount + $2
		 WHERE user_id = $1`,
		p.Bill.UserID, total,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile totals: %w", err)
	}

	if err := notification.CreateTx(ctx, tx, p.Bill.UserID, p.SuccessMessage); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return payment, nil
}

// CreateTransaction inserts a single audit record outside any settlement unit
func (r *Repository) CreateTransaction(ctx context.Context, userID, billID int64, amount float64, method, status string) (*Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, bill_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, bill_id, amount, method, status, created_at
	`

	txn := &Transaction{}
	err := r.db.QueryRowContext(ctx, query, userID, billID, amount, method, status).Scan(
		&txn.ID,
		&txn.UserID,
		&txn.BillID,
		&txn.Amount,
		&txn.Method,
		&txn.Status,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return txn, nil
}

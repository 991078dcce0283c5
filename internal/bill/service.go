package bill

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/paysub/paysub/internal/notification"
	"github.com/paysub/paysub/internal/user"
)

// Common errors
var (
	ErrBillNotFound   = errors.New("bill not found")
	ErrTargetNotFound = errors.New("user not found or not verified")
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidAmount  = errors.New("amount due must be non-negative")
)

// monthlyBillTypes are the utility categories generated every month
var monthlyBillTypes = []string{"Electricity", "Water", "Internet", "Gas"}

// Service handles bill generation and penalty previews
type Service struct {
	repo          *Repository
	users         *user.Repository
	notifications *notification.Repository
}

// NewService creates a new bill service with dependencies injected
func NewService(repo *Repository, users *user.Repository, notifications *notification.Repository) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		notifications: notifications,
	}
}

// GenerateMonthly creates this month's utility bills for every verified
// non-admin user who does not have one yet. Returns the number of users
// billed.
func (s *Service) GenerateMonthly(ctx context.Context) (int, error) {
	users, err := s.users.ListVerifiedNonAdmins(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	billed := 0
	for _, u := range users {
		exists, err := s.repo.HasBillForMonth(ctx, u.ID, now.Year(), now.Month())
		if err != nil {
			return billed, err
		}
		if exists {
			continue
		}

		for _, billType := range monthlyBillTypes {
			amount := roundToPaise(300 + rand.Float64()*900)
			dueDate := now.AddDate(0, 0, 5+rand.IntN(11))

			if _, err := s.repo.Create(ctx, u.ID, billType, amount, dueDate); err != nil {
				return billed, err
			}
		}

		message := fmt.Sprintf("New monthly bills have been generated for %s.", now.Format("January 2006"))
		if _, err := s.notifications.Create(ctx, u.ID, message); err != nil {
			// Bills exist either way; the user just misses the notice
			slog.Warn("failed to create bill notification", "user_id", u.ID, "error", err)
		}
		billed++
	}

	return billed, nil
}

// GenerateCustom creates one bill for a specific user by email
func (s *Service) GenerateCustom(ctx context.Context, req *GenerateCustomRequest) (*Bill, error) {
	if req.AmountDue < 0 {
		return nil, ErrInvalidAmount
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, ErrInvalidDueDate
	}

	target, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.IsVerified || target.IsAdmin {
		return nil, ErrTargetNotFound
	}

	bill, err := s.repo.Create(ctx, target.ID, req.BillType, req.AmountDue, dueDate)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("A new %s bill of ₹%.2f has been added.", req.BillType, req.AmountDue)
	if _, err := s.notifications.Create(ctx, target.ID, message); err != nil {
		slog.Warn("failed to create bill notification", "user_id", target.ID, "error", err)
	}

	return bill, nil
}

// roundToPaise rounds an amount to two decimal places, half away from zero
func roundToPaise(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// CheckPenalty returns the read-only penalty preview for a bill as of now
func (s *Service) CheckPenalty(ctx context.Context, billID, userID int64) (*PenaltyQuote, error) {
	bill, err := s.repo.GetByIDAndUser(ctx, billID, userID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, ErrBillNotFound
	}

	penalty, total := ComputePenalty(bill.AmountDue, bill.DueDate, time.Now())
	return &PenaltyQuote{
		BillType:    bill.BillType,
		AmountDue:   bill.AmountDue,
		Penalty:     penalty,
		TotalAmount: total,
	}, nil
}

// ExportCSV writes the user's bill history as CSV, newest first
func (s *Service) ExportCSV(ctx context.Context, userID int64, w io.Writer) error {
	bills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "User ID", "Bill Type", "Amount Due", "Due Date", "Status", "Created At"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range bills {
		record := []string{
			fmt.Sprintf("%d", b.ID),
			fmt.Sprintf("%d", b.UserID),
			b.BillType,
			fmt.Sprintf("%.2f", b.AmountDue),
			b.DueDate.Format("2006-01-02"),
			string(b.Status),
			b.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

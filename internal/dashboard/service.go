package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/paysub/paysub/internal/notification"
	"github.com/paysub/paysub/internal/user"
)

// ErrUserNotFound is returned when the authenticated user no longer exists
var ErrUserNotFound = errors.New("user not found")

// displayZone is the fixed UTC+5:30 offset transaction times are rendered in
var displayZone = time.FixedZone("IST", 5*3600+30*60)

// recentNotificationLimit caps how many messages the dashboard shows
const recentNotificationLimit = 5

// savedMethods is the static list of payment instruments shown to the client
var savedMethods = []string{"Razorpay", "UPI", "Wallet"}

// Store runs the bill and transaction reads the dashboard is built from
type Store interface {
	CurrentBill(ctx context.Context, userID int64) (*BillSummary, error)
	UpcomingBills(ctx context.Context, userID int64) ([]*BillSummary, error)
	Transactions(ctx context.Context, userID int64) ([]*TransactionRow, error)
}

// UserStore looks up the account and its billing profile
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*user.Profile, error)
}

// NotificationStore lists the user's recent notifications
type NotificationStore interface {
	ListRecent(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error)
}

// Service composes the read-only dashboard view. It never mutates state
// and tolerates a user with no profile, bills or transactions.
type Service struct {
	repo          Store
	users         UserStore
	notifications NotificationStore
}

// NewService creates a new dashboard service with dependencies injected
func NewService(repo Store, users UserStore, notifications NotificationStore) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		notifications: notifications,
	}
}

// Build assembles the dashboard for one user
func (s *Service) Build(ctx context.Context, userID int64) (*View, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.CurrentBill(ctx, userID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.repo.UpcomingBills(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns, err := s.repo.Transactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.ListRecent(ctx, userID, recentNotificationLimit)
	if err != nil {
		return nil, err
	}

	view := &View{
		Name:          "User",
		Email:         u.Email,
		Username:      u.Username,
		Bill:          currentBillView(current),
		Upcoming:      make([]UpcomingBill, 0, len(upcoming)),
		SavedMethods:  savedMethods,
		Transactions:  make([]TransactionView, 0, len(txns)),
		Notifications: make([]string, 0, len(notifications)),
	}

	if profile != nil {
		view.Name = profile.Name
		if profile.TotalPayments > 0 {
			view.AvgSpend = profile.TotalAmount / float64(profile.TotalPayments)
		}
	}

	for _, b := range upcoming {
		view.Upcoming = append(view.Upcoming, UpcomingBill{
			ID:        b.ID,
			Utility:   b.BillType,
			AmountDue: b.AmountDue,
			DueDate:   b.DueDate.Format("2006-01-02"),
			Status:    b.Status,
		})
	}

	for _, t := range txns {
		plan := "N/A"
		if t.BillType != nil {
			plan = *t.BillType
		}
		view.Transactions = append(view.Transactions, TransactionView{
			ID:     t.ID,
			Date:   t.CreatedAt.UTC().Format("2006-01-02"),
			Time:   t.CreatedAt.In(displayZone).Format("03:04:05 PM"),
			Plan:   plan,
			Amount: t.Amount,
			Status: t.Status,
		})
	}

	for _, n := range notifications {
		view.Notifications = append(view.Notifications, n.Message)
	}

	return view, nil
}

func currentBillView(b *BillSummary) CurrentBillView {
	if b == nil {
		return CurrentBillView{
			Utility: "No pending bills",
			DueDate: "—",
			Status:  "—",
		}
	}
	return CurrentBillView{
		ID:        &b.ID,
		Utility:   b.BillType,
		AmountDue: b.AmountDue,
		DueDate:   b.DueDate.Format("2006-01-02"),
		Status:    b.Status,
	}
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/paysub/paysub/internal/notification"
	"github.com/paysub/paysub/internal/user"
)

type fakeStore struct {
	current  *BillSummary
	upcoming []*BillSummary
	txns     []*TransactionRow
}

func (f *fakeStore) CurrentBill(ctx context.Context, userID int64) (*BillSummary, error) {
	return f.current, nil
}

func (f *fakeStore) UpcomingBills(ctx context.Context, userID int64) ([]*BillSummary, error) {
	return f.upcoming, nil
}

func (f *fakeStore) Transactions(ctx context.Context, userID int64) ([]*TransactionRow, error) {
	return f.txns, nil
}

type fakeUsers struct {
	user    *user.User
	profile *user.Profile
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return f.user, nil
}

func (f *fakeUsers) GetProfileByUserID(ctx context.Context, userID int64) (*user.Profile, error) {
	return f.profile, nil
}

type fakeNotifications struct {
	items []*notification.Notification
}

func (f *fakeNotifications) ListRecent(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	account := &user.User{ID: 1, Username: "ravi", Email: "ravi@example.com"}

	t.Run("brand new user gets a well-formed view", func(t *testing.T) {
		svc := NewService(&fakeStore{}, &fakeUsers{user: account}, &fakeNotifications{})

		view, err := svc.Build(ctx, 1)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if view.Name != "User" {
			t.Errorf("name = %q, want fallback User", view.Name)
		}
		if view.Email != "ravi@example.com" || view.Username != "ravi" {
			t.Errorf("identity = %q / %q", view.Email, view.Username)
		}
		if view.Bill.Utility != "No pending bills" {
			t.Errorf("current bill = %+v, want placeholder", view.Bill)
		}
		if view.AvgSpend != 0 {
			t.Errorf("avg spend = %v, want 0", view.AvgSpend)
		}
		if view.Upcoming == nil || len(view.Upcoming) != 0 {
			t.Errorf("upcoming = %v, want empty non-nil slice", view.Upcoming)
		}
		if view.Transactions == nil || len(view.Transactions) != 0 {
			t.Errorf("transactions = %v, want empty non-nil slice", view.Transactions)
		}
		if view.Notifications == nil || len(view.Notifications) != 0 {
			t.Errorf("notifications = %v, want empty non-nil slice", view.Notifications)
		}
		if len(view.SavedMethods) == 0 {
			t.Error("saved methods must always be present")
		}
	})

	t.Run("profile with no payments keeps avg spend at zero", func(t *testing.T) {
		profile := &user.Profile{UserID: 1, Name: "Ravi"}
		svc := NewService(&fakeStore{}, &fakeUsers{user: account, profile: profile}, &fakeNotifications{})

		view, err := svc.Build(ctx, 1)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if view.Name != "Ravi" {
			t.Errorf("name = %q, want Ravi", view.Name)
		}
		if view.AvgSpend != 0 {
			t.Errorf("avg spend = %v, want 0 with no payments", view.AvgSpend)
		}
	})

	t.Run("populated view", func(t *testing.T) {
		created := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
		billType := "Water"
		store := &fakeStore{
			current: &BillSummary{
				ID:        3,
				BillType:  "Electricity",
				AmountDue: 420,
				DueDate:   created.AddDate(0, 0, 7),
				Status:    "Pending",
			},
			upcoming: []*BillSummary{
				{ID: 3, BillType: "Electricity", AmountDue: 420, DueDate: created.AddDate(0, 0, 7), Status: "Pending"},
			},
			txns: []*TransactionRow{
				{ID: 9, Amount: 420, Status: "Success", CreatedAt: created, BillType: &billType},
				{ID: 8, Amount: 300, Status: "Failed", CreatedAt: created},
			},
		}
		profile := &user.Profile{UserID: 1, Name: "Ravi", TotalAmount: 900, TotalPayments: 2}
		notes := &fakeNotifications{items: []*notification.Notification{
			{ID: 1, UserID: 1, Message: "Water bill of ₹420.00 paid successfully."},
		}}

		svc := NewService(store, &fakeUsers{user: account, profile: profile}, notes)

		view, err := svc.Build(ctx, 1)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if view.AvgSpend != 450 {
			t.Errorf("avg spend = %v, want 450", view.AvgSpend)
		}
		if view.Bill.ID == nil || *view.Bill.ID != 3 {
			t.Errorf("current bill = %+v, want id 3", view.Bill)
		}
		if len(view.Transactions) != 2 {
			t.Fatalf("transactions = %d, want 2", len(view.Transactions))
		}
		if view.Transactions[0].Plan != "Water" {
			t.Errorf("plan = %q, want Water", view.Transactions[0].Plan)
		}
		if view.Transactions[1].Plan != "N/A" {
			t.Errorf("plan = %q, want N/A when the bill is gone", view.Transactions[1].Plan)
		}
		if len(view.Notifications) != 1 || view.Notifications[0] != notes.items[0].Message {
			t.Errorf("notifications = %v", view.Notifications)
		}
	})
}

func TestCurrentBillView(t *testing.T) {
	t.Run("no pending bill renders placeholders", func(t *testing.T) {
		view := currentBillView(nil)
		if view.Utility != "No pending bills" {
			t.Errorf("utility = %q, want placeholder", view.Utility)
		}
		if view.DueDate != "—" || view.Status != "—" {
			t.Errorf("due date / status = %q / %q, want placeholders", view.DueDate, view.Status)
		}
		if view.ID != nil {
			t.Error("placeholder view must carry no bill id")
		}
	})

	t.Run("pending bill is projected", func(t *testing.T) {
		due := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
		view := currentBillView(&BillSummary{
			ID:        7,
			BillType:  "Electricity",
			AmountDue: 512.40,
			DueDate:   due,
			Status:    "Pending",
		})
		if view.ID == nil || *view.ID != 7 {
			t.Errorf("id = %v, want 7", view.ID)
		}
		if view.Utility != "Electricity" || view.AmountDue != 512.40 {
			t.Errorf("view = %+v", view)
		}
		if view.DueDate != "2024-03-15" {
			t.Errorf("due date = %q, want 2024-03-15", view.DueDate)
		}
	})
}

func TestDisplayZoneOffset(t *testing.T) {
	// 18:30 UTC is midnight the next day at the display offset
	utc := time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)
	local := utc.In(displayZone)
	if local.Hour() != 0 || local.Day() != 16 {
		t.Errorf("18:30 UTC rendered as %v, want midnight March 16", local)
	}
	if got := local.Format("03:04:05 PM"); got != "12:00:00 AM" {
		t.Errorf("time rendering = %q, want 12:00:00 AM", got)
	}
}

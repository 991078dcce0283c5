package dashboard

// View is the full dashboard projection for one user
type View struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	Bill          CurrentBillView   `json:"bill"`
	Upcoming      []UpcomingBill    `json:"upcoming"`
	AvgSpend      float64           `json:"avg_spend"`
	SavedMethods  []string          `json:"saved_methods"`
	Transactions  []TransactionView `json:"transactions"`
	Notifications []string          `json:"notifications"`
}

// CurrentBillView describes the most recent pending bill, with placeholder
// values when the user has none
type CurrentBillView struct {
	ID        *int64  `json:"id"`
	Utility   string  `json:"utility"`
	AmountDue float64 `json:"amount_due"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
}

// UpcomingBill is one pending bill in due-date order
type UpcomingBill struct {
	ID        int64   `json:"id"`
	Utility   string  `json:"utility"`
	AmountDue float64 `json:"amount_due"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
}

// TransactionView is one settlement attempt as shown on the dashboard.
// Date is the stored UTC day; Time is rendered at the IST display offset.
type TransactionView struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"`
	Time   string  `json:"time"`
	Plan   string  `json:"plan"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

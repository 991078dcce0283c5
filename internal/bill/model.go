package bill

import "time"

// BillStatus represents the lifecycle state of a bill
type BillStatus string

// A bill only ever moves Pending -> Paid; Paid is terminal.
const (
	StatusPending BillStatus = "Pending"
	StatusPaid    BillStatus = "Paid"
)

// Bill represents an amount owed by a user for a utility category
type Bill struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	BillType  string     `json:"bill_type"`
	AmountDue float64    `json:"amount_due"`
	DueDate   time.Time  `json:"due_date"`
	Status    BillStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

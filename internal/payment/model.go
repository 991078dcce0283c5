package payment

import "time"

// Providers recorded on payments and transactions
const (
	ProviderDirect   = "UtilityPay"
	ProviderRazorpay = "Razorpay"
)

// Payment statuses. Only successful settlements produce a Payment row, so
// Paid is the only status ever stored.
const PaymentStatusPaid = "Paid"

// Transaction statuses. One transaction is recorded per settlement attempt,
// successful or not.
const (
	TxnStatusSuccess = "Success"
	TxnStatusFailed  = "Failed"
)

// defaultMethod is the payment instrument assumed when the client omits one
const defaultMethod = "UPI"

// Payment records one successful settlement. Immutable once created.
type Payment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Plan       string    `json:"plan"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	Provider   string    `json:"provider"`
	PaymentRef *string   `json:"payment_id,omitempty"`
	DueDate    time.Time `json:"due_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// Transaction is the append-only audit record of one settlement attempt
type Transaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BillID    int64     `json:"bill_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

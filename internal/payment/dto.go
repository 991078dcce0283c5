package payment

import "fmt"

// PayBillRequest represents the request to settle a bill directly
type PayBillRequest struct {
	BillID         int64  `json:"bill_id" validate:"required"`
	Method         string `json:"method,omitempty"`
	ConfirmPayment bool   `json:"confirm_payment,omitempty"`
}

// VerifyPaymentRequest represents the request to settle a bill after a
// gateway checkout
type VerifyPaymentRequest struct {
	BillID            int64  `json:"bill_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpaySignature string `json:"razorpay_signature,omitempty"`
}

// CreateOrderRequest represents the request to open a gateway order
type CreateOrderRequest struct {
	BillID int64 `json:"bill_id" validate:"required"`
}

// RecordFailedRequest represents a client-side failure report
type RecordFailedRequest struct {
	BillID int64    `json:"bill_id" validate:"required"`
	Amount *float64 `json:"amount" validate:"required"`
	Method string   `json:"method,omitempty"`
}

// Outcome discriminates the possible results of a settlement attempt
type Outcome string

const (
	// OutcomeSettled: the bill was marked Paid and all records were written
	OutcomeSettled Outcome = "settled"
	// OutcomeAlreadyPaid: the bill was Paid before this attempt; nothing changed
	OutcomeAlreadyPaid Outcome = "already_paid"
	// OutcomeConfirmPenalty: a penalty applies and the caller has not
	// confirmed it; a quote is returned and nothing changed
	OutcomeConfirmPenalty Outcome = "penalty_confirmation_required"
)

// SettlementResult is the outcome of one settlement attempt. Exactly one
// outcome is set; failures are reported as errors instead.
type SettlementResult struct {
	Outcome        Outcome
	BillID         int64
	BillType       string
	OriginalAmount float64
	Penalty        int64
	TotalAmount    float64
	Payment        *Payment // set when Outcome is OutcomeSettled
}

// OrderQuote is the response to opening a gateway order
type OrderQuote struct {
	OrderID        string  `json:"order_id"`
	TotalAmount    float64 `json:"total_amount"`
	Currency       string  `json:"currency"`
	Key            string  `json:"key"`
	BillType       string  `json:"bill_type"`
	Penalty        int64   `json:"penalty"`
	OriginalAmount float64 `json:"original_amount"`
}

// PaymentReceipt is the payment summary echoed after a settlement
type PaymentReceipt struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Plan   string `json:"plan"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

// ToReceipt converts a Payment to its response form
func (p *Payment) ToReceipt() *PaymentReceipt {
	return &PaymentReceipt{
		ID:     p.ID,
		Date:   p.CreatedAt.Format("2006-01-02"),
		Plan:   p.Plan,
		Amount: fmt.Sprintf("₹%.2f", p.Amount),
		Status: p.Status,
	}
}

package bill

// GenerateCustomRequest represents the request to create one bill for a user
type GenerateCustomRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	BillType  string  `json:"bill_type" validate:"required"`
	AmountDue float64 `json:"amount_due" validate:"required,gte=0"`
	DueDate   string  `json:"due_date" validate:"required"` // YYYY-MM-DD
}

// CheckPenaltyRequest represents the request for a penalty preview
type CheckPenaltyRequest struct {
	BillID int64 `json:"bill_id" validate:"required"`
}

// PenaltyQuote is the read-only penalty preview for a bill
type PenaltyQuote struct {
	BillType    string  `json:"bill_type"`
	AmountDue   float64 `json:"amount_due"`
	Penalty     int64   `json:"penalty"`
	TotalAmount float64 `json:"total_amount"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID        int64   `json:"id"`
	BillType  string  `json:"bill_type"`
	AmountDue float64 `json:"amount_due"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// ToResponse converts a Bill model to a BillResponse DTO
func (b *Bill) ToResponse() *BillResponse {
	return &BillResponse{
		ID:        b.ID,
		BillType:  b.BillType,
		AmountDue: b.AmountDue,
		DueDate:   b.DueDate.Format("2006-01-02"),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

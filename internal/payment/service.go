package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/paysub/paysub/internal/bill"
	"github.com/paysub/paysub/internal/gateway"
	"github.com/paysub/paysub/pkg/metrics"
)

// Common errors
var (
	ErrBillNotFound     = errors.New("bill not found")
	ErrSignatureInvalid = gateway.ErrSignatureInvalid
)

// BillStore is the bill lookup the settlement engine needs
type BillStore interface {
	GetByIDAndUser(ctx context.Context, id, userID int64) (*bill.Bill, error)
}

// LedgerStore runs settlement units and records audit transactions
type LedgerStore interface {
	Settle(ctx context.Context, p *SettleParams) (*Payment, error)
	CreateTransaction(ctx context.Context, userID, billID int64, amount float64, method, status string) (*Transaction, error)
}

// Gateway is the external payment processor contract
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency string, notes map[string]string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
}

// Service is the bill settlement engine. It owns every Pending -> Paid
// transition and the records written alongside it.
type Service struct {
	bills  BillStore
	ledger LedgerStore
	gw     Gateway
	now    func() time.Time
}

// NewService creates a new settlement service with dependencies injected
func NewService(bills BillStore, ledger LedgerStore, gw Gateway) *Service {
	return &Service{
		bills:  bills,
		ledger: ledger,
		gw:     gw,
		now:    time.Now,
	}
}

// SettleDirect settles a bill on a trusted client confirmation. When the
// bill is overdue and the caller has not confirmed the penalty, a quote is
// returned and nothing is written.
func (s *Service) SettleDirect(ctx context.Context, userID int64, req *PayBillRequest) (*SettlementResult, error) {
	b, err := s.bills.GetByIDAndUser(ctx, req.BillID, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}
	if b.Status == bill.StatusPaid {
		return alreadyPaid(b), nil
	}

	penalty, total := bill.ComputePenalty(b.AmountDue, b.DueDate, s.now())

	if penalty > 0 && !req.ConfirmPayment {
		return &SettlementResult{
			Outcome:        OutcomeConfirmPenalty,
			BillID:         b.ID,
			BillType:       b.BillType,
			OriginalAmount: b.AmountDue,
			Penalty:        penalty,
			TotalAmount:    total,
		}, nil
	}

	method := req.Method
	if method == "" {
		method = defaultMethod
	}

	params := &SettleParams{
		Bill:           b,
		Penalty:        penalty,
		Provider:       ProviderDirect,
		Method:         method,
		SuccessMessage: fmt.Sprintf("%s bill of ₹%.2f paid successfully.", b.BillType, total),
	}
	if penalty > 0 {
		params.PenaltyMessage = fmt.Sprintf("Penalty of ₹%d added for %s bill.", penalty, b.BillType)
	}

	payment, err := s.ledger.Settle(ctx, params)
	if err != nil {
		metrics.ObserveSettlement(ProviderDirect, "error")
		return nil, err
	}
	if payment == nil {
		// Lost the race: another request settled the bill first
		return alreadyPaid(b), nil
	}

	metrics.ObserveSettlement(ProviderDirect, "success")
	return &SettlementResult{
		Outcome:        OutcomeSettled,
		BillID:         b.ID,
		BillType:       b.BillType,
		OriginalAmount: b.AmountDue,
		Penalty:        penalty,
		TotalAmount:    total,
		Payment:        payment,
	}, nil
}

// SettleViaGateway settles a bill after a gateway checkout. A supplied
// signature is verified first; an invalid one records a Failed transaction
// and reports ErrSignatureInvalid. An absent signature is trusted as
// pre-verified from the order-creation step.
func (s *Service) SettleViaGateway(ctx context.Context, userID int64, req *VerifyPaymentRequest) (*SettlementResult, error) {
	b, err := s.bills.GetByIDAndUser(ctx, req.BillID, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}

	if req.RazorpaySignature != "" {
		if err := s.gw.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
			s.recordFailureBestEffort(ctx, b)
			metrics.ObserveSettlement(ProviderRazorpay, "signature_invalid")
			return nil, ErrSignatureInvalid
		}
	}

	if b.Status == bill.StatusPaid {
		return alreadyPaid(b), nil
	}

	var paymentRef *string
	if req.RazorpayPaymentID != "" {
		paymentRef = &req.RazorpayPaymentID
	}

	params := &SettleParams{
		Bill:           b,
		Provider:       ProviderRazorpay,
		Method:         ProviderRazorpay,
		PaymentRef:     paymentRef,
		SuccessMessage: fmt.Sprintf("%s bill of ₹%.2f paid successfully via Razorpay.", b.BillType, b.AmountDue),
	}

	payment, err := s.ledger.Settle(ctx, params)
	if err != nil {
		// The unit rolled back; keep the attempt in the audit trail
		s.recordFailureBestEffort(ctx, b)
		metrics.ObserveSettlement(ProviderRazorpay, "error")
		return nil, err
	}
	if payment == nil {
		return alreadyPaid(b), nil
	}

	metrics.ObserveSettlement(ProviderRazorpay, "success")
	return &SettlementResult{
		Outcome:        OutcomeSettled,
		BillID:         b.ID,
		BillType:       b.BillType,
		OriginalAmount: b.AmountDue,
		TotalAmount:    b.AmountDue,
		Payment:        payment,
	}, nil
}

// CreateOrder quotes the total as of now and opens a gateway order for it.
// The bill itself is not touched.
func (s *Service) CreateOrder(ctx context.Context, userID, billID int64) (*OrderQuote, error) {
	b, err := s.bills.GetByIDAndUser(ctx, billID, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}

	penalty, total := bill.ComputePenalty(b.AmountDue, b.DueDate, s.now())

	order, err := s.gw.CreateOrder(ctx, int64(math.Round(total*100)), "INR", map[string]string{
		"bill_id": strconv.FormatInt(b.ID, 10),
		"user_id": strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	return &OrderQuote{
		OrderID:        order.ID,
		TotalAmount:    total,
		Currency:       "INR",
		Key:            s.gw.KeyID(),
		BillType:       b.BillType,
		Penalty:        penalty,
		OriginalAmount: b.AmountDue,
	}, nil
}

// RecordFailed inserts a Failed transaction reported by the client, e.g.
// an abandoned gateway checkout. The amount is recorded as reported.
func (s *Service) RecordFailed(ctx context.Context, userID int64, req *RecordFailedRequest) error {
	b, err := s.bills.GetByIDAndUser(ctx, req.BillID, userID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBillNotFound
	}

	method := req.Method
	if method == "" {
		method = ProviderRazorpay
	}

	_, err = s.ledger.CreateTransaction(ctx, userID, b.ID, *req.Amount, method, TxnStatusFailed)
	return err
}

// recordFailureBestEffort writes a Failed transaction for the audit trail.
// It never escalates: a secondary failure is logged and swallowed.
func (s *Service) recordFailureBestEffort(ctx context.Context, b *bill.Bill) {
	_, err := s.ledger.CreateTransaction(ctx, b.UserID, b.ID, b.AmountDue, ProviderRazorpay, TxnStatusFailed)
	if err != nil {
		slog.Error("failed to record failed transaction", "bill_id", b.ID, "user_id", b.UserID, "error", err)
	}
}

func alreadyPaid(b *bill.Bill) *SettlementResult {
	return &SettlementResult{
		Outcome:        OutcomeAlreadyPaid,
		BillID:         b.ID,
		BillType:       b.BillType,
		OriginalAmount: b.AmountDue,
		TotalAmount:    b.AmountDue,
	}
}

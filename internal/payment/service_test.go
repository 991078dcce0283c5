package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paysub/paysub/internal/bill"
	"github.com/paysub/paysub/internal/gateway"
)

type fakeBills struct {
	bills map[int64]*bill.Bill
}

func (f *fakeBills) GetByIDAndUser(ctx context.Context, id, userID int64) (*bill.Bill, error) {
	b, ok := f.bills[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}
	return b, nil
}

type fakeLedger struct {
	settleCalls []*SettleParams
	txns        []*Transaction
	settleErr   error
	txnErr      error
	lostRace    bool

	// profile totals mirrored the way the settlement unit updates them
	totalAmount   float64
	totalPayments int
}

func (f *fakeLedger) Settle(ctx context.Context, p *SettleParams) (*Payment, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	if f.lostRace {
		return nil, nil
	}
	f.settleCalls = append(f.settleCalls, p)

	total := p.Bill.AmountDue + float64(p.Penalty)
	f.totalAmount += total
	f.totalPayments++
	p.Bill.Status = bill.StatusPaid
	p.Bill.AmountDue = total
	return &Payment{
		ID:         int64(len(f.settleCalls)),
		UserID:     p.Bill.UserID,
		Plan:       p.Bill.BillType,
		Amount:     total,
		Status:     PaymentStatusPaid,
		Provider:   p.Provider,
		PaymentRef: p.PaymentRef,
		DueDate:    p.Bill.DueDate,
		CreatedAt:  time.Now(),
	}, nil
}

func (f *fakeLedger) CreateTransaction(ctx context.Context, userID, billID int64, amount float64, method, status string) (*Transaction, error) {
	if f.txnErr != nil {
		return nil, f.txnErr
	}
	txn := &Transaction{
		ID:     int64(len(f.txns) + 1),
		UserID: userID,
		BillID: billID,
		Amount: amount,
		Method: method,
		Status: status,
	}
	f.txns = append(f.txns, txn)
	return txn, nil
}

type fakeGateway struct {
	verifyErr error
	orderErr  error
	lastOrder int64
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency string, notes map[string]string) (*gateway.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.lastOrder = amountMinorUnits
	return &gateway.Order{ID: "order_test123", Amount: amountMinorUnits, Currency: currency}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) error {
	return f.verifyErr
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func newTestService(bills map[int64]*bill.Bill, ledger *fakeLedger, gw *fakeGateway, now time.Time) *Service {
	svc := NewService(&fakeBills{bills: bills}, ledger, gw)
	svc.now = func() time.Time { return now }
	return svc
}

func pendingBill(id, userID int64, amount float64, dueDate time.Time) *bill.Bill {
	return &bill.Bill{
		ID:        id,
		UserID:    userID,
		BillType:  "Electricity",
		AmountDue: amount,
		DueDate:   dueDate,
		Status:    bill.StatusPending,
	}
}

func TestSettleDirect(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC)
	due := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("bill not found", func(t *testing.T) {
		svc := newTestService(map[int64]*bill.Bill{}, &fakeLedger{}, &fakeGateway{}, now)

		_, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 99})
		if !errors.Is(err, ErrBillNotFound) {
			t.Fatalf("expected ErrBillNotFound, got %v", err)
		}
	})

	t.Run("bill owned by someone else", func(t *testing.T) {
		b := pendingBill(1, 2, 500, due)
		svc := newTestService(map[int64]*bill.Bill{1: b}, &fakeLedger{}, &fakeGateway{}, now)

		_, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1})
		if !errors.Is(err, ErrBillNotFound) {
			t.Fatalf("expected ErrBillNotFound, got %v", err)
		}
	})

	t.Run("overdue without confirmation returns quote", func(t *testing.T) {
		b := pendingBill(1, 1, 500, due)
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1})
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if result.Outcome != OutcomeConfirmPenalty {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeConfirmPenalty)
		}
		if result.Penalty != 30 || result.TotalAmount != 530 {
			t.Errorf("quote = penalty %d total %v, want 30 / 530", result.Penalty, result.TotalAmount)
		}
		if len(ledger.settleCalls) != 0 {
			t.Error("quote must not settle the bill")
		}
		if b.Status != bill.StatusPending {
			t.Error("quote must leave the bill pending")
		}
	})

	t.Run("overdue with confirmation settles with penalty", func(t *testing.T) {
		b := pendingBill(1, 1, 500, due)
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1, ConfirmPayment: true})
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if result.Outcome != OutcomeSettled {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeSettled)
		}
		if result.Payment == nil || result.Payment.Amount != 530 {
			t.Fatalf("payment = %+v, want amount 530", result.Payment)
		}
		if len(ledger.settleCalls) != 1 {
			t.Fatalf("settle calls = %d, want 1", len(ledger.settleCalls))
		}

		params := ledger.settleCalls[0]
		if params.Penalty != 30 {
			t.Errorf("applied penalty = %d, want 30", params.Penalty)
		}
		if params.Provider != ProviderDirect {
			t.Errorf("provider = %s, want %s", params.Provider, ProviderDirect)
		}
		if params.PenaltyMessage == "" {
			t.Error("expected a penalty notification message")
		}
	})

	t.Run("not overdue settles without penalty", func(t *testing.T) {
		b := pendingBill(1, 1, 500, now.AddDate(0, 0, 5))
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1, Method: "Wallet"})
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if result.Outcome != OutcomeSettled || result.Penalty != 0 || result.TotalAmount != 500 {
			t.Fatalf("result = %+v, want settled with no penalty", result)
		}
		if ledger.settleCalls[0].Method != "Wallet" {
			t.Errorf("method = %s, want Wallet", ledger.settleCalls[0].Method)
		}
		if ledger.settleCalls[0].PenaltyMessage != "" {
			t.Error("no penalty message expected when not overdue")
		}
	})

	t.Run("already paid is idempotent", func(t *testing.T) {
		b := pendingBill(1, 1, 500, due)
		b.Status = bill.StatusPaid
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1, ConfirmPayment: true})
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if result.Outcome != OutcomeAlreadyPaid {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAlreadyPaid)
		}
		if len(ledger.settleCalls) != 0 || len(ledger.txns) != 0 {
			t.Error("already-paid bill must produce no writes")
		}
	})

	t.Run("lost settle race reports already paid", func(t *testing.T) {
		b := pendingBill(1, 1, 500, now.AddDate(0, 0, 5))
		ledger := &fakeLedger{lostRace: true}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1})
		if err != nil {
			t.Fatalf("SettleDirect failed: %v", err)
		}
		if result.Outcome != OutcomeAlreadyPaid {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAlreadyPaid)
		}
	})
}

func TestSettleViaGateway(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC)
	due := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)

	t.Run("invalid signature records failed transaction", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		ledger := &fakeLedger{}
		gw := &fakeGateway{verifyErr: gateway.ErrSignatureInvalid}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, gw, now)

		_, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{
			BillID:            1,
			RazorpayOrderID:   "order_x",
			RazorpayPaymentID: "pay_x",
			RazorpaySignature: "bad",
		})
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("expected ErrSignatureInvalid, got %v", err)
		}
		if b.Status != bill.StatusPending {
			t.Error("invalid signature must not change bill status")
		}
		if len(ledger.txns) != 1 {
			t.Fatalf("failed transactions = %d, want 1", len(ledger.txns))
		}
		txn := ledger.txns[0]
		if txn.Status != TxnStatusFailed || txn.Amount != 750 || txn.Method != ProviderRazorpay {
			t.Errorf("failed txn = %+v", txn)
		}
		if len(ledger.settleCalls) != 0 {
			t.Error("invalid signature must not settle")
		}
	})

	t.Run("valid signature settles with payment reference", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{
			BillID:            1,
			RazorpayOrderID:   "order_x",
			RazorpayPaymentID: "pay_x",
			RazorpaySignature: "good",
		})
		if err != nil {
			t.Fatalf("SettleViaGateway failed: %v", err)
		}
		if result.Outcome != OutcomeSettled {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeSettled)
		}

		params := ledger.settleCalls[0]
		if params.Provider != ProviderRazorpay {
			t.Errorf("provider = %s, want %s", params.Provider, ProviderRazorpay)
		}
		if params.PaymentRef == nil || *params.PaymentRef != "pay_x" {
			t.Errorf("payment ref = %v, want pay_x", params.PaymentRef)
		}
		if params.Penalty != 0 {
			t.Errorf("gateway settlement must not re-apply a penalty, got %d", params.Penalty)
		}
	})

	t.Run("missing signature is trusted", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		ledger := &fakeLedger{}
		gw := &fakeGateway{verifyErr: gateway.ErrSignatureInvalid}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, gw, now)

		result, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{BillID: 1})
		if err != nil {
			t.Fatalf("SettleViaGateway failed: %v", err)
		}
		if result.Outcome != OutcomeSettled {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeSettled)
		}
	})

	t.Run("already paid reports success without writes", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		b.Status = bill.StatusPaid
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		result, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{BillID: 1})
		if err != nil {
			t.Fatalf("SettleViaGateway failed: %v", err)
		}
		if result.Outcome != OutcomeAlreadyPaid {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAlreadyPaid)
		}
		if len(ledger.settleCalls) != 0 || len(ledger.txns) != 0 {
			t.Error("already-paid bill must produce no writes")
		}
	})

	t.Run("settle failure records failed transaction best effort", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		ledger := &fakeLedger{settleErr: errors.New("connection reset")}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		_, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{BillID: 1})
		if err == nil {
			t.Fatal("expected error from failed settle")
		}
		if len(ledger.txns) != 1 || ledger.txns[0].Status != TxnStatusFailed {
			t.Errorf("expected one failed transaction, got %+v", ledger.txns)
		}
	})

	t.Run("secondary recording failure never escalates", func(t *testing.T) {
		b := pendingBill(1, 1, 750, due)
		ledger := &fakeLedger{settleErr: errors.New("connection reset"), txnErr: errors.New("still down")}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		_, err := svc.SettleViaGateway(ctx, 1, &VerifyPaymentRequest{BillID: 1})
		if err == nil || err.Error() != "connection reset" {
			t.Fatalf("expected the primary error, got %v", err)
		}
	})
}

func TestProfileTotalsAdditive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 10)

	amounts := []float64{300, 512.40, 1187.25}
	bills := map[int64]*bill.Bill{}
	for i, amount := range amounts {
		bills[int64(i+1)] = pendingBill(int64(i+1), 1, amount, due)
	}

	ledger := &fakeLedger{}
	svc := newTestService(bills, ledger, &fakeGateway{}, now)

	var want float64
	for i, amount := range amounts {
		result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: int64(i + 1)})
		if err != nil {
			t.Fatalf("SettleDirect(%d) failed: %v", i+1, err)
		}
		if result.Outcome != OutcomeSettled {
			t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeSettled)
		}
		want += amount
	}

	if ledger.totalPayments != len(amounts) {
		t.Errorf("total payments = %d, want %d", ledger.totalPayments, len(amounts))
	}
	if ledger.totalAmount != want {
		t.Errorf("total amount = %v, want %v", ledger.totalAmount, want)
	}

	// Re-settling a paid bill must not touch the totals
	result, err := svc.SettleDirect(ctx, 1, &PayBillRequest{BillID: 1})
	if err != nil {
		t.Fatalf("SettleDirect failed: %v", err)
	}
	if result.Outcome != OutcomeAlreadyPaid {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAlreadyPaid)
	}
	if ledger.totalPayments != len(amounts) || ledger.totalAmount != want {
		t.Errorf("totals changed on an already-paid bill: %d / %v", ledger.totalPayments, ledger.totalAmount)
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC)
	due := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	t.Run("quotes penalty and opens order in paise", func(t *testing.T) {
		b := pendingBill(1, 1, 500.50, due)
		gw := &fakeGateway{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, &fakeLedger{}, gw, now)

		quote, err := svc.CreateOrder(ctx, 1, 1)
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if quote.Penalty != 30 || quote.TotalAmount != 530.50 {
			t.Errorf("quote = penalty %d total %v, want 30 / 530.50", quote.Penalty, quote.TotalAmount)
		}
		if gw.lastOrder != 53050 {
			t.Errorf("order amount = %d paise, want 53050", gw.lastOrder)
		}
		if quote.OrderID != "order_test123" || quote.Key != "rzp_test_key" || quote.Currency != "INR" {
			t.Errorf("quote = %+v", quote)
		}
		if b.Status != bill.StatusPending {
			t.Error("order creation must not mutate the bill")
		}
	})

	t.Run("bill not found", func(t *testing.T) {
		svc := newTestService(map[int64]*bill.Bill{}, &fakeLedger{}, &fakeGateway{}, now)

		_, err := svc.CreateOrder(ctx, 1, 42)
		if !errors.Is(err, ErrBillNotFound) {
			t.Fatalf("expected ErrBillNotFound, got %v", err)
		}
	})

	t.Run("gateway error propagates", func(t *testing.T) {
		b := pendingBill(1, 1, 500, due)
		gw := &fakeGateway{orderErr: errors.New("gateway timeout")}
		svc := newTestService(map[int64]*bill.Bill{1: b}, &fakeLedger{}, gw, now)

		if _, err := svc.CreateOrder(ctx, 1, 1); err == nil {
			t.Fatal("expected gateway error")
		}
	})
}

func TestRecordFailed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 13, 12, 0, 0, 0, time.UTC)

	t.Run("records failed transaction", func(t *testing.T) {
		b := pendingBill(1, 1, 500, now)
		ledger := &fakeLedger{}
		svc := newTestService(map[int64]*bill.Bill{1: b}, ledger, &fakeGateway{}, now)

		amount := 530.0
		err := svc.RecordFailed(ctx, 1, &RecordFailedRequest{BillID: 1, Amount: &amount})
		if err != nil {
			t.Fatalf("RecordFailed failed: %v", err)
		}
		if len(ledger.txns) != 1 {
			t.Fatalf("transactions = %d, want 1", len(ledger.txns))
		}
		txn := ledger.txns[0]
		if txn.Status != TxnStatusFailed || txn.Amount != 530 || txn.Method != ProviderRazorpay {
			t.Errorf("txn = %+v", txn)
		}
	})

	t.Run("bill not found", func(t *testing.T) {
		svc := newTestService(map[int64]*bill.Bill{}, &fakeLedger{}, &fakeGateway{}, now)

		amount := 10.0
		err := svc.RecordFailed(ctx, 1, &RecordFailedRequest{BillID: 9, Amount: &amount})
		if !errors.Is(err, ErrBillNotFound) {
			t.Fatalf("expected ErrBillNotFound, got %v", err)
		}
	})
}

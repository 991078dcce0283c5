package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paysub/paysub/pkg/middleware"
	"github.com/paysub/paysub/pkg/response"
)

// Handler handles HTTP requests for bill payment operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new payment handler with dependencies injected
func NewHandler(service *Service, authMw *middleware.Auth) *Handler {
	return &Handler{service: service, auth: authMw}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(h.auth.RequireUser)
	r.Post("/pay", h.Pay)
	r.Post("/create-order", h.CreateOrder)
	r.Post("/verify-payment", h.VerifyPayment)
	r.Post("/record-failed-transaction", h.RecordFailed)

	return r
}

// payResponse is the success body for a direct settlement
type payResponse struct {
	Message        string          `json:"msg"`
	BillID         int64           `json:"bill_id"`
	OriginalAmount float64         `json:"original_amount"`
	Penalty        int64           `json:"penalty"`
	TotalAmount    float64         `json:"total_amount"`
	Payment        *PaymentReceipt `json:"payment,omitempty"`
}

// penaltyQuoteResponse is returned when the caller must confirm a penalty
type penaltyQuoteResponse struct {
	Message        string  `json:"msg"`
	BillType       string  `json:"bill_type"`
	OriginalAmount float64 `json:"original_amount"`
	Penalty        int64   `json:"penalty"`
	TotalAmount    float64 `json:"total_amount"`
}

// Pay handles POST /bill/pay
// @Summary      Settle a bill directly
// @Description  Mark a bill paid after client confirmation; overdue bills require penalty confirmation
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PayBillRequest true "Payment request"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bill/pay [post]
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	var req PayBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.BillID == 0 {
		response.BadRequest(w, "bill_id required")
		return
	}

	result, err := h.service.SettleDirect(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to process payment")
		return
	}

	switch result.Outcome {
	case OutcomeAlreadyPaid:
		response.JSON(w, http.StatusOK, map[string]string{"msg": "Bill already paid"})

	case OutcomeConfirmPenalty:
		response.JSON(w, http.StatusOK, &penaltyQuoteResponse{
			Message:        "Bill is overdue",
			BillType:       result.BillType,
			OriginalAmount: result.OriginalAmount,
			Penalty:        result.Penalty,
			TotalAmount:    result.TotalAmount,
		})

	default:
		msg := "Payment successful"
		if result.Penalty > 0 {
			msg = fmt.Sprintf("Payment successful (Penalty ₹%d)", result.Penalty)
		}
		response.JSON(w, http.StatusOK, &payResponse{
			Message:        msg,
			BillID:         result.BillID,
			OriginalAmount: result.OriginalAmount,
			Penalty:        result.Penalty,
			TotalAmount:    result.TotalAmount,
			Payment:        result.Payment.ToReceipt(),
		})
	}
}

// CreateOrder handles POST /bill/create-order
// @Summary      Open a gateway order for a bill
// @Description  Quote the total (including penalty) and create a Razorpay order for it
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateOrderRequest true "Order request"
// @Success      200 {object} response.APIResponse{data=OrderQuote}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bill/create-order [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.BillID == 0 {
		response.BadRequest(w, "bill_id required")
		return
	}

	quote, err := h.service.CreateOrder(r.Context(), userID, req.BillID)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create order")
		return
	}

	response.JSON(w, http.StatusOK, quote)
}

// VerifyPayment handles POST /bill/verify-payment
// @Summary      Settle a bill after gateway checkout
// @Description  Verify the Razorpay signature and settle the bill; invalid signatures are recorded as failed attempts
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body VerifyPaymentRequest true "Verification request"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bill/verify-payment [post]
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.BillID == 0 {
		response.BadRequest(w, "bill_id required")
		return
	}

	result, err := h.service.SettleViaGateway(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrSignatureInvalid) {
			response.BadRequest(w, "Razorpay payment verification failed")
			return
		}
		response.InternalError(w, "Failed to verify payment")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"msg":     "Payment successful via Razorpay",
		"bill_id": result.BillID,
	})
}

// RecordFailed handles POST /bill/record-failed-transaction
// @Summary      Record a client-side payment failure
// @Description  Append a Failed transaction for audit completeness
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecordFailedRequest true "Failure report"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bill/record-failed-transaction [post]
func (h *Handler) RecordFailed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	var req RecordFailedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.BillID == 0 || req.Amount == nil {
		response.BadRequest(w, "bill_id and amount required")
		return
	}

	if err := h.service.RecordFailed(r.Context(), userID, &req); err != nil {
		if errors.Is(err, ErrBillNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to record transaction")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"msg": "Failed transaction recorded"})
}

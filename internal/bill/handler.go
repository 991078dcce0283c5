package bill

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paysub/paysub/pkg/middleware"
	"github.com/paysub/paysub/pkg/response"
)

// Handler handles HTTP requests for bill operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new bill handler with dependencies injected
func NewHandler(service *Service, authMw *middleware.Auth) *Handler {
	return &Handler{service: service, auth: authMw}
}

// Routes returns the router for bill endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireUser)
		r.Post("/check-penalty", h.CheckPenalty)
		r.Get("/export", h.ExportCSV)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireAdmin)
		r.Post("/generate", h.GenerateMonthly)
		r.Post("/generate-custom", h.GenerateCustom)
	})

	return r
}

// GenerateMonthly handles POST /bills/generate
// @Summary      Generate monthly bills
// @Description  Create this month's utility bills for all verified users (admin only)
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /bills/generate [post]
func (h *Handler) GenerateMonthly(w http.ResponseWriter, r *http.Request) {
	billed, err := h.service.GenerateMonthly(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to generate bills")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Monthly bills generated for %d new users.", billed),
	})
}

// GenerateCustom handles POST /bills/generate-custom
// @Summary      Generate one bill for a user
// @Description  Create a single bill for the user with the given email (admin only)
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateCustomRequest true "Custom bill request"
// @Success      201 {object} response.APIResponse{data=BillResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bills/generate-custom [post]
func (h *Handler) GenerateCustom(w http.ResponseWriter, r *http.Request) {
	var req GenerateCustomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.BillType == "" || req.DueDate == "" {
		response.BadRequest(w, "Missing required fields")
		return
	}

	bill, err := h.service.GenerateCustom(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrInvalidDueDate) || errors.Is(err, ErrInvalidAmount) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to generate custom bill")
		return
	}

	response.JSON(w, http.StatusCreated, bill.ToResponse())
}

// CheckPenalty handles POST /bills/check-penalty
// @Summary      Preview the overdue penalty for a bill
// @Description  Read-only penalty and total as of today; no state changes
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckPenaltyRequest true "Penalty preview request"
// @Success      200 {object} response.APIResponse{data=PenaltyQuote}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /bills/check-penalty [post]
func (h *Handler) CheckPenalty(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	var req CheckPenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.BillID == 0 {
		response.BadRequest(w, "bill_id required")
		return
	}

	quote, err := h.service.CheckPenalty(r.Context(), req.BillID, userID)
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to check penalty")
		return
	}

	response.JSON(w, http.StatusOK, quote)
}

// ExportCSV handles GET /bills/export
// @Summary      Download bill history as CSV
// @Tags         bills
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {string} string "CSV file"
// @Router       /bills/export [get]
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=bills_history.csv")

	if err := h.service.ExportCSV(r.Context(), userID, w); err != nil {
		response.InternalError(w, "Failed to export bills")
	}
}

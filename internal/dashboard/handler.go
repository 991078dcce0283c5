package dashboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paysub/paysub/pkg/middleware"
	"github.com/paysub/paysub/pkg/response"
)

// Handler handles HTTP requests for the dashboard
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new dashboard handler with dependencies injected
func NewHandler(service *Service, authMw *middleware.Auth) *Handler {
	return &Handler{service: service, auth: authMw}
}

// Routes returns the router for dashboard endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(h.auth.RequireUser)
	r.Get("/data", h.Data)

	return r
}

// Data handles GET /dashboard/data
// @Summary      Dashboard summary
// @Description  Current bill, upcoming bills, recent transactions and notifications
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=View}
// @Failure      404 {object} response.APIResponse
// @Router       /dashboard/data [get]
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	view, err := h.service.Build(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Something went wrong loading dashboard.")
		return
	}

	response.JSON(w, http.StatusOK, view)
}

package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/paysub/paysub/pkg/middleware"
	"github.com/paysub/paysub/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	repo *Repository
	auth *middleware.Auth
}

// NewHandler creates a new notification handler with dependencies injected
func NewHandler(repo *Repository, authMw *middleware.Auth) *Handler {
	return &Handler{repo: repo, auth: authMw}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(h.auth.RequireUser)
	r.Get("/", h.List)

	return r
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// List handles GET /notifications
// @Summary      List recent notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Maximum number of notifications (default 20)"
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, err := h.repo.ListRecent(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	responses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = &NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	response.JSON(w, http.StatusOK, responses)
}

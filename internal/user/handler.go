package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paysub/paysub/internal/auth"
	"github.com/paysub/paysub/pkg/middleware"
	"github.com/paysub/paysub/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new user handler with dependencies injected
func NewHandler(service *Service, authMw *middleware.Auth) *Handler {
	return &Handler{service: service, auth: authMw}
}

// Routes returns the router for account endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/check-email", h.CheckEmail)
	r.Post("/register", h.Register)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireUser)
		r.Post("/logout", h.Logout)
	})

	return r
}

// CheckEmail handles POST /auth/check-email
// @Summary      Check email availability
// @Description  Validate an email address and report whether it is registered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body CheckEmailRequest true "Email to check"
// @Success      200 {object} response.APIResponse{data=CheckEmailResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /auth/check-email [post]
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		response.BadRequest(w, "Email required")
		return
	}

	result, err := h.service.CheckEmail(r.Context(), req.Email)
	if err != nil {
		response.InternalError(w, "Failed to check email")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Description  Create an unverified account and send an OTP to the email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=RegisterResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		response.BadRequest(w, "Email, password, and username required")
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailRegistered) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrWeakPassword) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register")
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

// VerifyOTP handles POST /auth/verify-otp
// @Summary      Verify an email with an OTP
// @Description  Mark the account verified and create its billing profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "OTP verification request"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.VerifyOTP(r.Context(), &req); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrInvalidOTP) || errors.Is(err, ErrOTPExpired) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to verify OTP")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"msg": "Email verified & profile created"})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Authenticate a verified account and issue a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=LoginResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotVerified) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh request"
// @Success      200 {object} response.APIResponse{data=RefreshResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWrongType) {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		response.InternalError(w, "Failed to refresh token")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Revoke the presented access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization required")
		return
	}

	if err := h.service.Logout(r.Context(), claims.ID); err != nil {
		response.InternalError(w, "Failed to log out")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"msg": "Logged out"})
}

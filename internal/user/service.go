package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/paysub/paysub/internal/auth"
	"github.com/paysub/paysub/internal/mailer"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("please verify email before logging in")
)

// Service handles registration, verification and authentication
type Service struct {
	repo      *Repository
	mail      mailer.Sender
	jwt       *auth.JWTManager
	otpExpiry time.Duration
}

// NewService creates a new user service with dependencies injected
func NewService(repo *Repository, mail mailer.Sender, jwtManager *auth.JWTManager, otpExpiry time.Duration) *Service {
	return &Service{
		repo:      repo,
		mail:      mail,
		jwt:       jwtManager,
		otpExpiry: otpExpiry,
	}
}

// CheckEmail reports whether an email is well-formed and already registered.
// An existing unverified account is reported as free so the user can
// re-register and receive a fresh OTP.
func (s *Service) CheckEmail(ctx context.Context, email string) (*CheckEmailResponse, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return &CheckEmailResponse{Valid: false, Exists: false}, nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsVerified {
			return &CheckEmailResponse{
				Valid:  true,
				Exists: false,
				Note:   "User exists but not verified, can re-register",
			}, nil
		}
		return &CheckEmailResponse{Valid: true, Exists: true}, nil
	}

	return &CheckEmailResponse{Valid: true, Exists: false}, nil
}

// Register creates an unverified account and emails an OTP. Registering an
// existing unverified email re-sends a fresh OTP instead of failing.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, ErrEmailRegistered
	}

	if existing != nil {
		// Unverified account: issue a fresh OTP
		if err := s.issueOTP(ctx, existing.ID, email); err != nil {
			return nil, err
		}
		return &RegisterResponse{Message: "New OTP sent", Email: email}, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, req.Username, email, string(hashed))
	if err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, created.ID, email); err != nil {
		return nil, err
	}

	return &RegisterResponse{Message: "Registered. OTP sent to email", Email: email}, nil
}

// VerifyOTP flags the account verified and creates its billing profile
func (s *Service) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.OTP == nil || *user.OTP != strings.TrimSpace(req.OTP) {
		return ErrInvalidOTP
	}
	if user.OTPExpiry == nil || time.Now().After(*user.OTPExpiry) {
		return ErrOTPExpired
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	profile, err := s.repo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		if _, err := s.repo.CreateProfile(ctx, user.ID, profileName(email)); err != nil {
			return err
		}
	}

	return nil
}

// Login authenticates a verified user and issues a token pair
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	access, err := s.jwt.GenerateAccess(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefresh(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}

	return &LoginResponse{
		Message:      "Login successful",
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         role,
	}, nil
}

// Refresh validates a refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.jwt.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repo.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}

	access, err := s.jwt.GenerateAccess(claims.UserID, claims.Email, claims.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{AccessToken: access}, nil
}

// Logout revokes the presented token
func (s *Service) Logout(ctx context.Context, jti string) error {
	return s.repo.RevokeToken(ctx, jti)
}

// issueOTP stores a fresh code and emails it. Mail delivery is
// fire-and-forget: a send failure never fails the registration.
func (s *Service) issueOTP(ctx context.Context, userID int64, email string) error {
	otp, err := generateOTP()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.otpExpiry)
	if err := s.repo.SetOTP(ctx, userID, otp, expiry); err != nil {
		return err
	}

	s.mail.Send(ctx, email, otp, int(s.otpExpiry.Minutes()))
	return nil
}

// generateOTP returns a random six-digit code
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// profileName derives the display name from the email local part
func profileName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "User"
	}
	first, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(first)) + local[size:]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

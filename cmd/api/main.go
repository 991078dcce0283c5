package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/paysub/paysub/internal/auth"
	"github.com/paysub/paysub/internal/bill"
	"github.com/paysub/paysub/internal/config"
	"github.com/paysub/paysub/internal/dashboard"
	"github.com/paysub/paysub/internal/database"
	"github.com/paysub/paysub/internal/gateway"
	"github.com/paysub/paysub/internal/mailer"
	"github.com/paysub/paysub/internal/notification"
	"github.com/paysub/paysub/internal/payment"
	"github.com/paysub/paysub/internal/user"
	"github.com/paysub/paysub/pkg/logging"
	"github.com/paysub/paysub/pkg/metrics"
	mw "github.com/paysub/paysub/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	logging.Setup()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("Connected to database successfully")

	// Shared collaborators
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailClient := mailer.NewBrevoClient(cfg.BrevoAPIKey, cfg.MailSenderName, cfg.MailSenderEmail)
	razorpay := gateway.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, mailClient, jwtManager, cfg.OTPExpiry)

	authMw := mw.NewAuth(jwtManager, userRepo)
	userHandler := user.NewHandler(userService, authMw)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationHandler := notification.NewHandler(notificationRepo, authMw)

	// Bill feature
	billRepo := bill.NewRepository(db)
	billService := bill.NewService(billRepo, userRepo, notificationRepo)
	billHandler := bill.NewHandler(billService, authMw)

	// Payment feature (settlement engine with gateway injected)
	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(billRepo, paymentRepo, razorpay)
	paymentHandler := payment.NewHandler(paymentService, authMw)

	// Dashboard feature
	dashboardRepo := dashboard.NewRepository(db)
	dashboardService := dashboard.NewService(dashboardRepo, userRepo, notificationRepo)
	dashboardHandler := dashboard.NewHandler(dashboardService, authMw)

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/auth", userHandler.Routes())
		r.Mount("/bills", billHandler.Routes())
		r.Mount("/bill", paymentHandler.Routes())
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

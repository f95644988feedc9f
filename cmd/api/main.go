package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ettra/waitlist-api/internal/config"
	"github.com/ettra/waitlist-api/internal/database"
	"github.com/ettra/waitlist-api/internal/handlers"
	middlewareCustom "github.com/ettra/waitlist-api/internal/middleware"
	"github.com/ettra/waitlist-api/internal/ratelimit"
	"github.com/ettra/waitlist-api/internal/repositories"
	"github.com/ettra/waitlist-api/internal/routes"
	"github.com/ettra/waitlist-api/internal/services"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.Bool("storage_configured", cfg.Database.Configured()),
		slog.Bool("captcha_enabled", cfg.Captcha.Enabled()),
		slog.Bool("email_enabled", cfg.Email.Enabled()),
	)

	// Storage is optional at startup; without it every submission gets
	// a 503 until an operator configures DATABASE_URL.
	var db *database.DB
	var waitlistRepo services.WaitlistRepository
	if cfg.Database.Configured() {
		db, err = database.NewConnection(&cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()

		migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(migrateCtx); err != nil {
			migrateCancel()
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		migrateCancel()

		waitlistRepo = repositories.NewWaitlistRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, waitlist submissions will be refused")
	}

	securityLogger := pkglogger.NewSecurityLogger(logger)

	// Admission controller: per-endpoint sliding windows plus a
	// fallback policy, swept periodically.
	limiter := ratelimit.New(
		ratelimit.Policy{MaxRequests: cfg.RateLimit.DefaultMaxRequests, Window: cfg.RateLimit.DefaultWindow},
		cfg.RateLimit.SweepInterval,
		logger,
	)
	limiter.SetPolicy(handlers.EndpointWaitlist, ratelimit.Policy{
		MaxRequests: cfg.RateLimit.WaitlistMaxRequests,
		Window:      cfg.RateLimit.WaitlistWindow,
	})
	admissionService := services.NewAdmissionService(limiter, securityLogger)

	captchaVerifier := services.NewHCaptchaVerifier(cfg.Captcha, logger)
	if !captchaVerifier.Enabled() {
		logger.Warn("HCAPTCHA_SECRET_KEY not set, captcha verification disabled")
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	emailSender, err := services.NewSESEmailSender(startupCtx, cfg.Email, logger)
	startupCancel()
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	waitlistService := services.NewWaitlistService(waitlistRepo, captchaVerifier, emailSender, securityLogger, logger)

	waitlistHandler := handlers.NewWaitlistHandler(waitlistService, admissionService, securityLogger)
	emailTestHandler := handlers.NewEmailTestHandler(emailSender, cfg.Email.TestRecipient)

	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders())
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterRoutes(router, waitlistHandler, emailTestHandler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"degraded","database":"unconfigured"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go limiter.Start(sweepCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	limiter.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/talentgrid/intake-service/cmd/mainconfig"
	"github.com/talentgrid/intake-service/internal/api/router"
	"github.com/talentgrid/intake-service/internal/audit"
	appconfig "github.com/talentgrid/intake-service/internal/config"
	"github.com/talentgrid/intake-service/internal/http/handlers"
	"github.com/talentgrid/intake-service/internal/intake"
	"github.com/talentgrid/intake-service/internal/notify"
	"github.com/talentgrid/intake-service/internal/observability/metrics"
	"github.com/talentgrid/intake-service/internal/ratelimit"
	"github.com/talentgrid/intake-service/internal/security"
	"github.com/talentgrid/intake-service/internal/spam"
	"github.com/talentgrid/intake-service/internal/submissions"
	"github.com/talentgrid/intake-service/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting intake-service API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Submission store: Postgres when configured, in-memory otherwise.
	var repo submissions.Repository
	var auditLog intake.AuditLog
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = submissions.NewPostgresRepository(pool)

		auditDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()
		auditLog = audit.NewService(auditDB)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory submission store")
		repo = submissions.NewInMemoryRepository()
	}

	intakeMetrics := metrics.NewIntakeMetrics(nil)

	// Rate limiter over Redis; the chain fails open if Redis is down.
	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimitEnabled {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		limiter = ratelimit.NewFixedWindowLimiter(redis.NewClient(opts), ratelimit.Config{
			Enabled: true,
			Max:     cfg.RateLimitMax,
			Window:  cfg.RateLimitWindow,
		}, logger)
	}

	// Spam defense chain, cheapest checks first.
	var checks []spam.Checker
	if cfg.HoneypotEnabled {
		checks = append(checks, spam.NewHoneypotCheck())
	}
	if cfg.TimingCheckEnabled {
		checks = append(checks, spam.NewTimingCheck(time.Duration(cfg.TimingMinSeconds)*time.Second, time.Now))
	}
	if limiter != nil {
		checks = append(checks, spam.NewRateLimitCheck(limiter, logger))
	}
	if cfg.CaptchaEnabled {
		verifier := spam.NewCaptchaVerifier(spam.CaptchaConfig{
			Secret:    cfg.CaptchaSecret,
			VerifyURL: cfg.CaptchaVerifyURL,
			Timeout:   cfg.CaptchaTimeout,
		}, logger)
		checks = append(checks, spam.NewCaptchaCheck(verifier, cfg.CaptchaMinScore, logger, intakeMetrics.ObserveCaptchaVerifyError))
	}
	chain := spam.NewChain(logger, checks...)

	notifier := notify.NewService(buildEmailSender(ctx, cfg, logger), cfg.NotifyRecipients, logger)

	tokens := security.NewTokenAuthority(cfg.CSRFSecret, cfg.CSRFTokenTTL)
	if tokens == nil {
		logger.Warn("CSRF_SECRET not set, form token checking disabled")
	}

	orch := intake.NewOrchestrator(intake.OrchestratorConfig{
		Tokens: tokens,
		Limits: intake.Limits{
			MessageMinLen: cfg.MessageMinLen,
			MessageMaxLen: cfg.MessageMaxLen,
		},
		Chain:    chain,
		Repo:     repo,
		Notifier: notifier,
		Audit:    auditLog,
		Metrics:  intakeMetrics,
		Logger:   logger,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      handlers.NewIntakeHandler(orch, tokens, cfg.CSRFTokenTTL, logger),
		AdminHandler:       handlers.NewAdminSubmissionsHandler(repo, limiter, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		FloodGuardRate:     cfg.FloodGuardRate,
		FloodGuardBurst:    cfg.FloodGuardBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the notification transport: explicit provider
// when set, otherwise whichever of SendGrid/SES is configured, falling
// back to the logging stub.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	provider := cfg.EmailProvider
	if provider == "auto" || provider == "" {
		switch {
		case cfg.SendGridAPIKey != "":
			provider = "sendgrid"
		case cfg.SESFromEmail != "":
			provider = "ses"
		default:
			provider = "stub"
		}
	}

	switch provider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			logger.Info("notifications via sendgrid", "from", cfg.SendGridFromEmail)
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set, falling back to stub email sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub email sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			logger.Info("notifications via ses", "from", cfg.SESFromEmail)
			return sender
		}
	}

	return notify.NewStubEmailSender(logger)
}

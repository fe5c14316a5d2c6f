package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jordanlanch/leadboard/config"
	"github.com/jordanlanch/leadboard/pkg/api/handlers"
	"github.com/jordanlanch/leadboard/pkg/auth"
	"github.com/jordanlanch/leadboard/pkg/cache"
	"github.com/jordanlanch/leadboard/pkg/export"
	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/jordanlanch/leadboard/pkg/jobs"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/metrics"
	custommiddleware "github.com/jordanlanch/leadboard/pkg/middleware"
	"github.com/jordanlanch/leadboard/pkg/phone"
	"github.com/jordanlanch/leadboard/pkg/server"
	"github.com/jordanlanch/leadboard/pkg/store"
	"github.com/jordanlanch/leadboard/pkg/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid configuration", err)
	}
	log.Info("configuration loaded", "environment", cfg.APIEnvironment, "store", cfg.StoreDriver)

	// Initialize Sentry for error tracking
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			sentryEnabled = true
			log.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Info("sentry disabled (no DSN configured)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	connectCtx, cancelConnect := context.WithTimeout(ctx, time.Minute)
	st, err := store.Open(connectCtx, cfg, log)
	cancelConnect()
	if err != nil {
		fatal(log, "failed to open store", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	defer redisClient.Close()

	loc, err := cfg.Location()
	if err != nil {
		fatal(log, "invalid filter timezone", err)
	}

	// Initialize Prometheus metrics
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	// Initialize services
	sessions := auth.NewSessions(auth.SessionConfig{
		Secret:     cfg.JWTSecret,
		TTL:        time.Duration(cfg.JWTExpirationHours) * time.Hour,
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.IsProduction(),
	}, auth.NewTokenBlacklist(redisClient))

	userService := users.NewService(st.Users, log)
	leadService := leads.NewService(st.Leads, redisClient, filter.NewCompiler(loc), leads.Config{
		CacheTTL: cfg.LeadCacheTTL,
	}, log)
	if m != nil {
		leadService.WithMetrics(m)
	}

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(10, 5) // login and register
	go globalRateLimiter.Run(ctx)
	go authRateLimiter.Run(ctx)

	opts := server.Options{
		Environment:     cfg.APIEnvironment,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		HSTS:            cfg.IsProduction(),
		Sentry:          sentryEnabled,
		Users:           userService,
		Leads:           leadService,
		Sessions:        sessions,
		Exporter:        export.NewWriter(phone.NewNormalizer(cfg.DefaultPhoneRegion)),
		RateLimiter:     globalRateLimiter,
		AuthRateLimiter: authRateLimiter,
		HealthChecks: map[string]handlers.PingFunc{
			"store": st.Ping,
			"redis": redisClient.Ping,
		},
		Logger: log,
	}
	if m != nil {
		opts.Metrics = m
		opts.MetricsHandler = promhttp.Handler()
	}
	e := server.New(opts)

	// Initialize cron jobs
	var cronManager *jobs.CronManager
	if cfg.StatsJobEnabled {
		var gauge jobs.StatusGauge
		if m != nil {
			gauge = m
		}
		cronManager = jobs.NewCronManager(jobs.NewLeadMonitor(st.Leads, gauge, log), cfg.StatsCronSchedule, log)
		if err := cronManager.SetupJobs(); err != nil {
			fatal(log, "failed to set up cron jobs", err)
		}
		cronManager.Start()
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Info("API starting",
		"address", address,
		"jwt_expiration_hours", cfg.JWTExpirationHours,
		"cors_origins", cfg.CORSAllowedOrigins,
		"rate_limit_per_minute", cfg.RateLimitRequestsPerMinute,
		"rate_limit_burst", cfg.RateLimitBurst,
	)

	go func() {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cronManager != nil {
		cronManager.Stop(shutdownCtx)
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server gracefully stopped")
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// Package server assembles the echo instance: global middleware, public
// endpoints and the session-gated API routes.
package server

import (
	"net/http"
	"time"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/leadboard/pkg/api/handlers"
	custommw "github.com/jordanlanch/leadboard/pkg/api/middleware"
	"github.com/jordanlanch/leadboard/pkg/auth"
	"github.com/jordanlanch/leadboard/pkg/export"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/metrics"
	custommiddleware "github.com/jordanlanch/leadboard/pkg/middleware"
	"github.com/jordanlanch/leadboard/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version is reported by the service info endpoint
const Version = "1.0.0"

const serviceName = "leadboard"

// Options carries everything the router needs. Metrics, MetricsHandler,
// RateLimiter and AuthRateLimiter are optional.
type Options struct {
	Environment    string
	CORSOrigins    []string
	RequestTimeout time.Duration
	HSTS           bool
	Sentry         bool

	Users    *users.Service
	Leads    *leads.Service
	Sessions *auth.Sessions
	Exporter *export.Writer

	Metrics         *metrics.Metrics
	MetricsHandler  http.Handler
	RateLimiter     *custommiddleware.RateLimiter
	AuthRateLimiter *custommiddleware.RateLimiter
	HealthChecks    map[string]handlers.PingFunc

	Logger logger.Logger
}

// New builds the HTTP server
func New(opts Options) *echo.Echo {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			log.Info("request", args...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if opts.Sentry {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // let Recover write the response
		}))
	}

	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}

	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(opts.CORSOrigins)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{HSTS: opts.HSTS}))

	if opts.RateLimiter != nil {
		e.Use(opts.RateLimiter.RateLimitMiddleware())
	}

	// Public endpoints
	health := handlers.NewHealthHandler(serviceName, Version, opts.Environment, opts.HealthChecks, log)
	e.GET("/", health.Info)
	e.GET("/health", health.Health)
	if opts.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(opts.MetricsHandler))
	}

	gate := custommw.SessionGate(opts.Sessions, log)
	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(opts.Users, opts.Sessions, opts.Metrics, log, opts.RequestTimeout)
	authRoutes := api.Group("/auth")
	{
		var limited []echo.MiddlewareFunc
		if opts.AuthRateLimiter != nil {
			limited = append(limited, opts.AuthRateLimiter.RateLimitMiddleware())
		}
		authRoutes.POST("/register", authHandler.Register, limited...)
		authRoutes.POST("/login", authHandler.Login, limited...)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", authHandler.Me, gate)
	}

	leadHandler := handlers.NewLeadHandler(opts.Leads, log, opts.RequestTimeout)
	exportHandler := handlers.NewExportHandler(opts.Leads, opts.Exporter, opts.Metrics, log, opts.RequestTimeout)
	leadsGroup := api.Group("/leads", gate)
	{
		leadsGroup.GET("", leadHandler.List)
		leadsGroup.POST("", leadHandler.Create)
		leadsGroup.GET("/preview", leadHandler.Preview) // Must be before /:id to avoid route conflict
		leadsGroup.GET("/export", exportHandler.Download)
		leadsGroup.GET("/:id", leadHandler.Get)
		leadsGroup.PUT("/:id", leadHandler.Update)
		leadsGroup.DELETE("/:id", leadHandler.Delete)
	}

	return e
}

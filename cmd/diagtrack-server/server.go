package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/diagtrack/diagtrack/internal/config"
	"github.com/diagtrack/diagtrack/internal/domain/diagnostictest"
	"github.com/diagtrack/diagtrack/internal/platform/db"
	"github.com/diagtrack/diagtrack/internal/platform/health"
	"github.com/diagtrack/diagtrack/internal/platform/httperr"
	"github.com/diagtrack/diagtrack/internal/platform/middleware"
)

// newServer wires middleware and routes around repo. poolStats may be nil.
func newServer(cfg *config.Config, logger zerolog.Logger, repo diagnostictest.Repository, poolStats func() *db.PoolStats) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	svc := diagnostictest.NewService(repo)

	health.NewHandler(svc, poolStats, logger).RegisterRoutes(e)
	if cfg.IsDev() {
		e.GET("/debug/database", health.DebugHandler(cfg.DatabaseURL))
	}

	// The limiter is attached per route; Group.Use would add catch-all routes
	// that turn 405 into 404 and throttle unknown paths.
	limit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	diagnostictest.NewHandler(svc, logger).RegisterRoutes(e.Group("/records"), limit)

	return e
}

// Package health serves the operational endpoints: the database liveness
// check, pool statistics and the development-only connection string check.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diagtrack/diagtrack/internal/platform/db"
	"github.com/diagtrack/diagtrack/internal/platform/httperr"
)

const pingTimeout = 5 * time.Second

// Pinger runs a trivial query against the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	pinger Pinger
	stats  func() *db.PoolStats
	logger zerolog.Logger
	now    func() time.Time
}

// NewHandler builds the health endpoints. stats may be nil, in which case
// /health/pool is not registered.
func NewHandler(pinger Pinger, stats func() *db.PoolStats, logger zerolog.Logger) *Handler {
	return &Handler{pinger: pinger, stats: stats, logger: logger, now: time.Now}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Check)
	if h.stats != nil {
		e.GET("/health/pool", h.Pool)
	}
}

type checkResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Check reports whether the store answers a ping.
func (h *Handler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, checkResponse{
		Status:    "ok",
		Database:  "connected",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) Pool(c echo.Context) error {
	return c.JSON(http.StatusOK, h.stats())
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diagtrack/diagtrack/internal/platform/db"
	"github.com/diagtrack/diagtrack/internal/platform/httperr"
)

type stubPinger struct {
	err      error
	deadline bool
}

func (p *stubPinger) Ping(ctx context.Context) error {
	_, p.deadline = ctx.Deadline()
	return p.err
}

func newTestHandler(err error) (*Handler, *stubPinger) {
	p := &stubPinger{err: err}
	h := NewHandler(p, func() *db.PoolStats { return &db.PoolStats{MaxConns: 20, TotalConns: 2} }, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return h, p
}

func TestCheck_OK(t *testing.T) {
	h, p := newTestHandler(nil)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := h.Check(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !p.deadline {
		t.Error("expected ping to run with a deadline")
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["database"] != "connected" {
		t.Errorf("unexpected body %v", body)
	}
	if body["timestamp"] != "2026-10-19T12:00:00Z" {
		t.Errorf("unexpected timestamp %q", body["timestamp"])
	}
}

func TestCheck_StoreFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"refused", db.Classify("ping database", syscall.ECONNREFUSED), http.StatusServiceUnavailable, httperr.MsgConnectionRefused},
		{"timeout", db.Classify("ping database", context.DeadlineExceeded), http.StatusGatewayTimeout, httperr.MsgTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, httperr.MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(tt.err)
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			if err := h.Check(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var body map[string]string
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body["message"] != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, body["message"])
			}
		})
	}
}

func TestPool(t *testing.T) {
	h, _ := newTestHandler(nil)
	e := echo.New()
	h.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/pool", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats db.PoolStats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.MaxConns != 20 || stats.TotalConns != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRegisterRoutes_NoStats(t *testing.T) {
	h := NewHandler(&stubPinger{}, nil, zerolog.Nop())
	e := echo.New()
	h.RegisterRoutes(e)

	for _, r := range e.Routes() {
		if r.Path == "/health/pool" {
			t.Error("pool route registered without a stats source")
		}
	}
}

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diagtrack/diagtrack/internal/platform/db"
	"github.com/diagtrack/diagtrack/internal/platform/validate"
)

func TestTranslate_StoreErrors(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unique", db.Classify("create", &pgconn.PgError{Code: "23505"}), http.StatusConflict, MsgUniqueViolation},
		{"raw unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, MsgUniqueViolation},
		{"gorm duplicate", gorm.ErrDuplicatedKey, http.StatusConflict, MsgUniqueViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, MsgForeignKeyViolation},
		{"too large", &pgconn.PgError{Code: "22001"}, http.StatusBadRequest, MsgValueTooLarge},
		{"not found", db.NotFound("get"), http.StatusNotFound, MsgNotFound},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, MsgNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, MsgNotFound},
		{"constraint", &pgconn.PgError{Code: "23514"}, http.StatusForbidden, MsgConstraintFailed},
		{"invalid stored value", &pgconn.PgError{Code: "22P02"}, http.StatusBadRequest, MsgInvalidStoredValue},
		{"type mismatch", &pgconn.PgError{Code: "42804"}, http.StatusBadRequest, MsgTypeMismatch},
		{"raw query", &pgconn.PgError{Code: "42601"}, http.StatusInternalServerError, MsgRawQueryFailed},
		{"refused", refused, http.StatusServiceUnavailable, MsgConnectionRefused},
		{"connection", &pgconn.PgError{Code: "08006"}, http.StatusInternalServerError, MsgConnection},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, MsgTimeout},
		{"canceled statement", &pgconn.PgError{Code: "57014"}, http.StatusGatewayTimeout, MsgTimeout},
		{"other pg", &pgconn.PgError{Code: "XX000"}, http.StatusInternalServerError, MsgDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err)
			if got.Status != tt.status {
				t.Errorf("status = %d, want %d", got.Status, tt.status)
			}
			if got.Message != tt.msg {
				t.Errorf("message = %q, want %q", got.Message, tt.msg)
			}
		})
	}
}

func TestTranslate_JSONSyntax(t *testing.T) {
	var v any
	err := json.Unmarshal([]byte(`{"patientName":`), &v)
	if err == nil {
		t.Fatal("expected decode error")
	}
	got := Translate(fmt.Errorf("decode body: %w", err))
	if got.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got.Status)
	}
	if got.Message != "Invalid JSON syntax: "+err.Error() {
		t.Errorf("unexpected message %q", got.Message)
	}
}

func TestTranslate_Validation(t *testing.T) {
	err := &validate.Error{Issues: []validate.Issue{
		{Field: "result", Reason: "Required"},
		{Field: "notes", Reason: "Expected string, received number"},
	}}
	got := Translate(err)
	if got.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got.Status)
	}
	want := "Validation error - result: Required; notes: Expected string, received number"
	if got.Message != want {
		t.Errorf("got %q, want %q", got.Message, want)
	}
}

func TestTranslate_HTTPError(t *testing.T) {
	got := Translate(echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large"))
	if got.Status != http.StatusRequestEntityTooLarge || got.Message != "request body too large" {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestTranslate_Fallback(t *testing.T) {
	for _, err := range []error{nil, errors.New("boom"), fmt.Errorf("wrapped: %w", errors.New("odd"))} {
		got := Translate(err)
		if got.Status != http.StatusInternalServerError || got.Message != MsgUnexpected {
			t.Errorf("Translate(%v) = %+v, want 500 fallback", err, got)
		}
	}
}

func TestWrite(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := Write(c, db.NotFound("get")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != MsgNotFound {
		t.Errorf("unexpected body %v", body)
	}
	if len(body) != 1 {
		t.Errorf("expected only a message field, got %v", body)
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop())
	e.GET("/boom", func(c echo.Context) error { return errors.New("raw driver failure") })
	e.GET("/gone", func(c echo.Context) error { return db.NotFound("get") })

	tests := []struct {
		path   string
		status int
		msg    string
	}{
		{"/boom", http.StatusInternalServerError, MsgUnexpected},
		{"/gone", http.StatusNotFound, MsgNotFound},
		{"/no-such-route", http.StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, rec.Code)
		}
		var body map[string]string
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["message"] != tt.msg {
			t.Errorf("%s: expected %q, got %q", tt.path, tt.msg, body["message"])
		}
	}
}

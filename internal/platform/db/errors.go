package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind classifies a failure raised by the persistent store.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUniqueViolation
	KindForeignKeyViolation
	KindValueTooLarge
	KindNotFound
	KindConstraintFailed
	KindInvalidStoredValue
	KindTypeMismatch
	KindRawQueryFailed
	KindConnectionRefused
	KindConnection
	KindTimeout
	KindDatabase
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindUniqueViolation:     "unique_violation",
	KindForeignKeyViolation: "foreign_key_violation",
	KindValueTooLarge:       "value_too_large",
	KindNotFound:            "not_found",
	KindConstraintFailed:    "constraint_failed",
	KindInvalidStoredValue:  "invalid_stored_value",
	KindTypeMismatch:        "type_mismatch",
	KindRawQueryFailed:      "raw_query_failed",
	KindConnectionRefused:   "connection_refused",
	KindConnection:          "connection",
	KindTimeout:             "timeout",
	KindDatabase:            "database",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErrNotFound is returned (wrapped in *Error) when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Error is a classified store failure. Op names the repository operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a KindNotFound error for op.
func NotFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: ErrNotFound}
}

// Classify wraps err in an *Error with its kind resolved. Nil stays nil and
// already classified errors are returned untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf resolves the kind of any error, classified or raw. Errors that do not
// come from the store resolve to KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindUniqueViolation
	}
	if errors.Is(err, gorm.ErrInvalidData) || errors.Is(err, gorm.ErrInvalidField) || errors.Is(err, gorm.ErrInvalidValue) {
		return KindTypeMismatch
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return kindForSQLState(pgErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnectionRefused
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	// Drivers sometimes flatten dial failures into plain strings.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return KindConnectionRefused
	case strings.Contains(msg, "could not connect to server"), strings.Contains(msg, "failed to connect"),
		strings.Contains(msg, "closed pool"):
		return KindConnection
	case strings.Contains(msg, "timeout"):
		return KindTimeout
	}

	return KindUnknown
}

// kindForSQLState maps a PostgreSQL SQLSTATE to an ErrorKind.
func kindForSQLState(code string) ErrorKind {
	switch code {
	case "23505":
		return KindUniqueViolation
	case "23503":
		return KindForeignKeyViolation
	case "22001", "22003":
		return KindValueTooLarge
	case "23502", "23514", "23P01":
		return KindConstraintFailed
	case "22P02", "22007", "22008":
		return KindInvalidStoredValue
	case "42804":
		return KindTypeMismatch
	case "57014":
		return KindTimeout
	}
	switch {
	case strings.HasPrefix(code, "08"):
		return KindConnection
	case strings.HasPrefix(code, "42"):
		return KindRawQueryFailed
	}
	return KindDatabase
}

// Package httperr turns any failure raised while serving a request into the
// status code and message sent back to the client.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diagtrack/diagtrack/internal/platform/db"
	"github.com/diagtrack/diagtrack/internal/platform/validate"
)

// Response is the translated form of an error.
type Response struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

const (
	MsgUniqueViolation     = "Unique constraint failed. Duplicate record exists."
	MsgForeignKeyViolation = "Foreign key constraint failed. Related record missing."
	MsgValueTooLarge       = "Value too large for field."
	MsgNotFound            = "Record not found. The requested resource does not exist."
	MsgConstraintFailed    = "Transaction failed due to constraint violation."
	MsgInvalidStoredValue  = "Invalid value stored in database."
	MsgTypeMismatch        = "Mismatched data type for a field."
	MsgRawQueryFailed      = "Raw query failed. Invalid SQL syntax."
	MsgConnectionRefused   = "Database connection failed. The database service may be unavailable."
	MsgConnection          = "Database connection failed. Ensure the database is running."
	MsgTimeout             = "Database operation timed out. Please try again."
	MsgDatabase            = "Database error occurred. Please try again."
	MsgUnexpected          = "An unexpected error occurred. Please try again later."
)

var storeResponses = map[db.ErrorKind]Response{
	db.KindUniqueViolation:     {http.StatusConflict, MsgUniqueViolation},
	db.KindForeignKeyViolation: {http.StatusBadRequest, MsgForeignKeyViolation},
	db.KindValueTooLarge:       {http.StatusBadRequest, MsgValueTooLarge},
	db.KindNotFound:            {http.StatusNotFound, MsgNotFound},
	db.KindConstraintFailed:    {http.StatusForbidden, MsgConstraintFailed},
	db.KindInvalidStoredValue:  {http.StatusBadRequest, MsgInvalidStoredValue},
	db.KindTypeMismatch:        {http.StatusBadRequest, MsgTypeMismatch},
	db.KindRawQueryFailed:      {http.StatusInternalServerError, MsgRawQueryFailed},
	db.KindConnectionRefused:   {http.StatusServiceUnavailable, MsgConnectionRefused},
	db.KindConnection:          {http.StatusInternalServerError, MsgConnection},
	db.KindTimeout:             {http.StatusGatewayTimeout, MsgTimeout},
	db.KindDatabase:            {http.StatusInternalServerError, MsgDatabase},
}

// Translate maps err to exactly one Response. Anything unclassified becomes a
// 500 with the generic message.
func Translate(err error) Response {
	if err == nil {
		return Response{Status: http.StatusInternalServerError, Message: MsgUnexpected}
	}

	if resp, ok := storeResponses[db.KindOf(err)]; ok {
		return resp
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Response{Status: http.StatusBadRequest, Message: "Invalid JSON syntax: " + syntaxErr.Error()}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Response{Status: http.StatusBadRequest, Message: "Invalid JSON syntax: " + typeErr.Error()}
	}

	var verr *validate.Error
	if errors.As(err, &verr) {
		return Response{Status: http.StatusBadRequest, Message: "Validation error - " + verr.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return Response{Status: he.Code, Message: fmt.Sprint(he.Message)}
	}

	return Response{Status: http.StatusInternalServerError, Message: MsgUnexpected}
}

// Write sends the translated error as {"message": ...}.
func Write(c echo.Context, err error) error {
	resp := Translate(err)
	return c.JSON(resp.Status, resp)
}

// ErrorHandler replaces echo's default so that routing errors, middleware
// rejections and anything a handler returns unwritten share the same body.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		resp := Translate(err)
		if resp.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", resp.Status).Msg("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}

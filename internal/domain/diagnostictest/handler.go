package diagnostictest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diagtrack/diagtrack/internal/platform/httperr"
)

const (
	msgNoID          = "No ID provided in request."
	msgNoBody        = "Data not sent in request."
	msgMissingFields = "Missing required fields."
)

var errNoBody = errors.New("request body is empty")

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.GET("", h.ListRecords, mw...)
	g.POST("", h.CreateRecord, mw...)
	// A trailing slash with no id reaches the handlers so they answer 400.
	g.GET("/", h.GetRecord, mw...)
	g.PUT("/", h.UpdateRecord, mw...)
	g.DELETE("/", h.DeleteRecord, mw...)
	g.GET("/:id", h.GetRecord, mw...)
	g.PUT("/:id", h.UpdateRecord, mw...)
	g.DELETE("/:id", h.DeleteRecord, mw...)
}

type messageResponse struct {
	Message string `json:"message"`
}

type recordResponse struct {
	Message string          `json:"message"`
	Record  *DiagnosticTest `json:"Record"`
}

type listResponse struct {
	Message string            `json:"message"`
	Records []*DiagnosticTest `json:"Records"`
}

func (h *Handler) ListRecords(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Message: "Records found", Records: items})
}

func (h *Handler) GetRecord(c echo.Context) error {
	raw := c.Param("id")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{msgNoID})
	}
	id, err := ParseID(raw)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, recordResponse{Message: "Record found", Record: t})
}

func (h *Handler) CreateRecord(c echo.Context) error {
	body, err := readBody(c)
	if errors.Is(err, errNoBody) {
		return c.JSON(http.StatusBadRequest, messageResponse{msgNoBody})
	}
	if err != nil {
		return h.fail(c, err)
	}
	in, err := ParseCreate(body)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, recordResponse{Message: "Record created", Record: t})
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	raw := c.Param("id")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{msgNoID})
	}
	body, err := readBody(c)
	if errors.Is(err, errNoBody) {
		return c.JSON(http.StatusBadRequest, messageResponse{msgNoBody})
	}
	if err != nil {
		return h.fail(c, err)
	}
	in, err := ParseUpdate(body)
	if err != nil {
		return h.fail(c, err)
	}
	if in.TestType == "" || in.Result == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{msgMissingFields})
	}
	id, err := ParseID(raw)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, recordResponse{Message: "Record updated", Record: t})
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	raw := c.Param("id")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, messageResponse{msgNoID})
	}
	id, err := ParseID(raw)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{"Record deleted"})
}

// readBody decodes the request body into a generic JSON value. An empty body
// or a literal null reports errNoBody.
func readBody(c echo.Context) (any, error) {
	req := c.Request()
	if req.Body == nil {
		return nil, errNoBody
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errNoBody
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errNoBody
	}
	return v, nil
}

func (h *Handler) fail(c echo.Context, err error) error {
	resp := httperr.Translate(err)

	evt := h.logger.Warn()
	if resp.Status >= http.StatusInternalServerError {
		evt = h.logger.Error()
	}
	rid, _ := c.Get("request_id").(string)
	evt.Err(err).
		Str("request_id", rid).
		Int("status", resp.Status).
		Msg("diagnostic test request failed")

	return c.JSON(resp.Status, resp)
}

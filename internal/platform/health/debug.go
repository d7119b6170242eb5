package health

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type debugResponse struct {
	DatabaseURL string   `json:"databaseUrl"`
	URLPresent  bool     `json:"urlPresent"`
	HasIssues   bool     `json:"hasIssues"`
	Issues      []string `json:"issues"`
}

// DebugHandler reports on the configured connection string with the
// password masked. Only register it in development.
func DebugHandler(databaseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		issues := CheckURL(databaseURL)
		return c.JSON(http.StatusOK, debugResponse{
			DatabaseURL: MaskURL(databaseURL),
			URLPresent:  databaseURL != "",
			HasIssues:   len(issues) > 0,
			Issues:      issues,
		})
	}
}

// CheckURL lists common mistakes in a PostgreSQL connection string.
func CheckURL(raw string) []string {
	issues := []string{}
	if raw == "" {
		return append(issues, "DATABASE_URL is not set")
	}
	if !strings.HasPrefix(raw, "postgresql://") && !strings.HasPrefix(raw, "postgres://") {
		issues = append(issues, "URL must start with postgresql:// or postgres://")
	}
	if !strings.Contains(raw, "@") {
		issues = append(issues, "URL appears to be missing authentication information")
	}
	if u, err := url.Parse(raw); err != nil || u.Port() == "" {
		issues = append(issues, "URL appears to be missing port information")
	}
	return issues
}

// MaskURL hides the password in a connection string.
func MaskURL(raw string) string {
	if raw == "" {
		return "Not set"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "Unparseable connection string"
	}
	return u.Redacted()
}

package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
	auth "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		last = sc.Text()
	}
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(last), &m))
	return m
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		status  int
		level   string
	}{
		{
			name: "ok",
			handler: func(c echo.Context) error {
				logging.FromContext(c.Request().Context()).Info("inside")
				return c.NoContent(http.StatusOK)
			},
			status: http.StatusOK,
			level:  "INFO",
		},
		{
			name: "client error",
			handler: func(echo.Context) error {
				return echo.NewHTTPError(http.StatusConflict, "taken")
			},
			status: http.StatusConflict,
			level:  "WARN",
		},
		{
			name: "server error",
			handler: func(echo.Context) error {
				return echo.NewHTTPError(http.StatusInternalServerError, "boom")
			},
			status: http.StatusInternalServerError,
			level:  "ERROR",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echo.New()
			e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
			e.GET("/x", tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(echo.HeaderXRequestID, "rid-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

			line := lastLine(t, &buf)
			assert.Equal(t, "request_completed", line["msg"])
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "rid-1", line["request_id"])
			assert.Equal(t, "/x", line["route"])
			assert.EqualValues(t, tt.status, line["status"])
		})
	}
}

func TestRequestLogger_UserID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	uid := uuid.New()
	e.GET("/orders/:id", func(c echo.Context) error {
		auth.SetIdentity(c, uid, tokens.RoleUser)
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	line := lastLine(t, &buf)
	assert.Equal(t, uid.String(), line["user_id"])
	assert.Equal(t, "/orders/:id", line["route"])
	assert.Equal(t, "/orders/42", line["url"])
}

func TestRequestLoggerWithConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		handler echo.HandlerFunc
		level   string
		logged  bool
	}{
		{
			name:    "quiet success",
			path:    "/health/live",
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		},
		{
			name:    "quiet failure",
			path:    "/health/live",
			handler: func(echo.Context) error { return echo.NewHTTPError(http.StatusServiceUnavailable, "down") },
			level:   "ERROR",
			logged:  true,
		},
		{
			name: "slow",
			path: "/slow",
			handler: func(c echo.Context) error {
				time.Sleep(30 * time.Millisecond)
				return c.NoContent(http.StatusOK)
			},
			level:  "WARN",
			logged: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echo.New()
			e.Use(RequestLoggerWithConfig(logging.NewWithWriter(&buf, "info"), Config{
				Quiet: []string{"/health/live"},
				Slow:  20 * time.Millisecond,
			}))
			e.GET(tt.path, tt.handler)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !tt.logged {
				assert.Zero(t, buf.Len())
				return
			}
			line := lastLine(t, &buf)
			assert.Equal(t, tt.level, line["level"])
			if tt.name == "slow" {
				assert.Equal(t, true, line["slow"])
			}
		})
	}
}

package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	auth "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Config struct {
	// Quiet paths are still served and logged on failure, but a successful
	// request is only logged at debug. Health checks and scrapes go here.
	Quiet []string
	// Slow upgrades a successful request to WARN once it takes this long.
	// Zero disables the check.
	Slow time.Duration
}

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return RequestLoggerWithConfig(base, Config{})
}

// RequestLoggerWithConfig stores a request-scoped logger in the request
// context and writes one request_completed line per request. Handler errors
// are rendered first so the logged status is the one the client got. Once
// the auth middleware has run, the caller's user id is attached.
func RequestLoggerWithConfig(base *slog.Logger, cfg Config) echo.MiddlewareFunc {
	quiet := make(map[string]struct{}, len(cfg.Quiet))
	for _, p := range cfg.Quiet {
		quiet[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path())
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []any{
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			}
			if uid, uerr := auth.UserID(c); uerr == nil {
				attrs = append(attrs, "user_id", uid.String())
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			} else {
				attrs = append(attrs, "bytes", c.Response().Size)
			}

			_, isQuiet := quiet[req.URL.Path]
			ctx := c.Request().Context()
			switch {
			case status >= 500:
				l.ErrorContext(ctx, "request_completed", attrs...)
			case status >= 400:
				l.WarnContext(ctx, "request_completed", attrs...)
			case cfg.Slow > 0 && elapsed >= cfg.Slow:
				l.WarnContext(ctx, "request_completed", append(attrs, "slow", true)...)
			case isQuiet:
				l.DebugContext(ctx, "request_completed", attrs...)
			default:
				l.InfoContext(ctx, "request_completed", attrs...)
			}
			return nil
		}
	}
}

package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/logging"
)

func requestID(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	rid := c.Request().Header.Get(echo.HeaderXRequestID)
	if rid != "" {
		c.Response().Header().Set(echo.HeaderXRequestID, rid)
	}
	return rid
}

// completion builds the attributes of the access line. The caller is
// only known once the auth middleware of the route has run.
func completion(c echo.Context, started time.Time) []any {
	attrs := []any{
		"status", c.Response().Status,
		"duration_ms", time.Since(started).Milliseconds(),
		"bytes", c.Response().Size,
	}
	if caller := identity.Get(c); caller.Authenticated() {
		attrs = append(attrs, "user_id", caller.ID, "superuser", caller.IsSuperuser)
	} else {
		attrs = append(attrs, "anonymous", true)
	}
	if q, ok := c.Request().URL.Query()["query"]; ok && len(q) > 0 {
		attrs = append(attrs, "query_len", len(q[0]))
	}
	return attrs
}

// RequestLogger stores a request scoped logger in the request context and
// writes one access line per request once the error handler has run.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"method", req.Method,
				"route", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := completion(c, started)
			switch status := c.Response().Status; {
			case status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("request completed", attrs...)
			case status >= 400:
				l.Warn("request completed", attrs...)
			default:
				l.Info("request completed", attrs...)
			}
			return nil
		}
	}
}

// Package loggingmw writes one log line per request and hands handlers a
// logger scoped to it through the request context.
package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/logging"
)

const (
	// VisitorCookie holds the anonymous cart owner id.
	VisitorCookie = "visitorId"

	// Keys other middleware leave on the echo context.
	visitorKey = "visitor_id"
	userKey    = "user_id"
	roleKey    = "role"
)

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			l := base.With(
				"method", req.Method,
				"route", c.Path(),
				"path", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			// echo's RequestID middleware only sets the response header for
			// ids it generates.
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := append([]any{
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", res.Size,
			}, shopper(c)...)

			msg := "request_completed"
			if strings.HasPrefix(res.Header().Get(echo.HeaderContentType), "text/event-stream") {
				msg = "stream_closed"
			}

			switch {
			case err != nil || res.Status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error(msg, attrs...)
			case res.Status >= 400:
				l.Warn(msg, attrs...)
			default:
				l.Info(msg, attrs...)
			}
			return nil
		}
	}
}

// shopper names who made the request: the cart owner and, once a session
// was resolved, the signed-in user.
func shopper(c echo.Context) []any {
	var attrs []any

	id, _ := c.Get(visitorKey).(string)
	if id == "" {
		if ck, err := c.Cookie(VisitorCookie); err == nil {
			if _, err := uuid.Parse(ck.Value); err == nil {
				id = ck.Value
			}
		}
	}
	if id != "" {
		attrs = append(attrs, "visitor_id", id)
	}

	if uid, _ := c.Get(userKey).(string); uid != "" {
		attrs = append(attrs, "user_id", uid, "role", c.Get(roleKey))
	}
	return attrs
}

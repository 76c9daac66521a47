package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// sessionHeader carries the caller's sandbox identifier. An absent or
// empty header means the caller operates on the shared global data set.
const sessionHeader = "X-Session-Id"

// sessionContextKey is the echo context key the session id is stored
// under for handlers and downstream middleware.
const sessionContextKey = "session_id"

// SessionScope extracts the session id from the request header and
// stores it on the context. It never rejects a request: sessions are an
// isolation mechanism for demo sandboxes, not an authentication one.
func SessionScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := strings.TrimSpace(c.Request().Header.Get(sessionHeader))
			c.Set(sessionContextKey, sid)
			return next(c)
		}
	}
}

// SessionID returns the session id stored by SessionScope, or "" when
// the middleware did not run or the caller sent no header.
func SessionID(c echo.Context) string {
	if v := c.Get(sessionContextKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

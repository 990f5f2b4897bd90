package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to every request. An id supplied by the
// client in X-Request-ID is kept; otherwise a new one is generated. The id is
// stored on the echo context under "request_id" and echoed in the response.
// RequestIDFrom returns the id RequestID attached to this request, falling
// back to the response header, or "" when the middleware is not installed.
func RequestIDFrom(c echo.Context) string {
	if rid, ok := c.Get("request_id").(string); ok && rid != "" {
		return rid
	}
	return c.Response().Header().Get(requestIDHeader)
}

func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(requestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(requestIDHeader, rid)
			return next(c)
		}
	}
}

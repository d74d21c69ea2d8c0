package requestid

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// Header carries the request correlation ID in both directions.
	Header = echo.HeaderXRequestID

	contextKey = "request_id"
)

// Middleware reuses an incoming X-Request-ID or generates a UUID, stores it on
// the echo context and echoes it back on the response.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(Header)
			if id == "" {
				id = uuid.NewString()
				c.Request().Header.Set(Header, id)
			}

			c.Set(contextKey, id)
			c.Response().Header().Set(Header, id)

			return next(c)
		}
	}
}

// FromEchoContext returns the ID stored by Middleware, or the empty string.
func FromEchoContext(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}

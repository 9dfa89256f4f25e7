package middleware

import (
	"github.com/labstack/echo/v4"
)

// securityHeaders are set before the handler runs, so handler headers win.
// customurl and wishlistpopular return third-party store pages verbatim;
// X-Frame-Options keeps them from being framed under this origin.
var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "no-referrer",
}

// SecurityHeaders returns an Echo middleware that adds security headers to responses.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for k, v := range securityHeaders {
				h.Set(k, v)
			}
			return next(c)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/unrolled/secure"
)

// SecurityHeaders sets the response security headers for a JSON API that
// serves patient data. isDev relaxes HSTS for plain-HTTP local runs.
func SecurityHeaders(isDev bool) echo.MiddlewareFunc {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		ForceSTSHeader:        true,
		IsDevelopment:         isDev,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := s.Process(c.Response(), c.Request()); err != nil {
				return err
			}
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}

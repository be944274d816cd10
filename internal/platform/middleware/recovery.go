package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/ehr/hospital/internal/platform/auth"
)

var panicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hospital_http_panics_total",
	Help: "Handler panics recovered, by route.",
}, []string{"route"})

// Recovery turns a handler panic into a 500 and logs it with the caller's
// identity. No audit record exists for the interrupted call.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				route := c.Path()
				if route == "" {
					route = "unmatched"
				}
				panicsRecovered.WithLabelValues(route).Inc()

				user := auth.UsernameFromContext(c.Request().Context())
				if user == "" {
					user = "anonymous"
				}
				rid, _ := c.Get("request_id").(string)
				logger.Error().
					Str("request_id", rid).
					Str("user", user).
					Str("method", c.Request().Method).
					Str("route", route).
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}

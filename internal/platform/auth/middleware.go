package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// UserDetails is what a PrincipalResolver returns for a username.
type UserDetails struct {
	Username     string
	PasswordHash string
	Roles        []string
}

// PrincipalResolver looks up the current roles of a user. Implementations
// return ErrPrincipalNotFound when the user no longer exists.
type PrincipalResolver interface {
	LoadByUsername(ctx context.Context, username string) (*UserDetails, error)
}

// PrincipalResolverFunc adapts a function to PrincipalResolver.
type PrincipalResolverFunc func(ctx context.Context, username string) (*UserDetails, error)

func (f PrincipalResolverFunc) LoadByUsername(ctx context.Context, username string) (*UserDetails, error) {
	return f(ctx, username)
}

var authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hospital_auth_outcomes_total",
	Help: "Authentication outcomes by result.",
}, []string{"outcome"})

const (
	outcomeNoToken       = "no_token"
	outcomeMalformed     = "malformed"
	outcomeBadSignature  = "invalid_signature"
	outcomeExpired       = "expired"
	outcomeUnknownUser   = "principal_not_found"
	outcomeResolverError = "resolver_error"
	outcomeAlreadySet    = "already_authenticated"
	outcomeAuthenticated = "authenticated"
)

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header value, or "" when the value is absent or malformed.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate installs a Principal into the request context when the
// request carries a valid bearer token whose subject still resolves to a
// user. It never rejects a request; AuthorizationPolicy decides admission.
func Authenticate(codec *TokenCodec, resolver PrincipalResolver, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				authOutcomes.WithLabelValues(outcomeNoToken).Inc()
				return next(c)
			}

			subject := codec.ExtractSubject(token)
			if subject == "" {
				outcome := outcomeMalformed
				if _, err := codec.Verify(token); errors.Is(err, ErrInvalidSignature) {
					outcome = outcomeBadSignature
				}
				authOutcomes.WithLabelValues(outcome).Inc()
				logger.Debug().Str("outcome", outcome).Msg("ignoring untrusted bearer token")
				return next(c)
			}

			if err := codec.Check(token, subject); err != nil {
				authOutcomes.WithLabelValues(outcomeExpired).Inc()
				logger.Debug().Str("subject", subject).Err(err).Msg("ignoring bearer token")
				return next(c)
			}

			ctx := c.Request().Context()
			if _, ok := PrincipalFromContext(ctx); ok {
				authOutcomes.WithLabelValues(outcomeAlreadySet).Inc()
				return next(c)
			}

			details, err := resolver.LoadByUsername(ctx, subject)
			if err != nil || details == nil {
				outcome := outcomeResolverError
				if err == nil || errors.Is(err, ErrPrincipalNotFound) {
					outcome = outcomeUnknownUser
				} else {
					logger.Warn().Err(err).Str("subject", subject).Msg("principal lookup failed")
				}
				authOutcomes.WithLabelValues(outcome).Inc()
				return next(c)
			}

			p := NewPrincipal(details.Username, details.Roles)
			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			authOutcomes.WithLabelValues(outcomeAuthenticated).Inc()
			return next(c)
		}
	}
}

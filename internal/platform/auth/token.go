package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTTL is the fixed lifetime of an issued token.
	TokenTTL = time.Hour
	// MinSigningKeyLength is the minimum HS256 key size in bytes.
	MinSigningKeyLength = 32
)

// Claims is the payload carried by a session token.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session tokens with a single static
// key. It holds no per-token state and is safe for concurrent use.
type TokenCodec struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec returns a codec signing with key. The key must be at least
// MinSigningKeyLength bytes.
func NewTokenCodec(key []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("auth: signing key must be at least %d bytes, got %d", MinSigningKeyLength, len(key))
	}
	c := &TokenCodec{
		key: append([]byte(nil), key...),
		now: time.Now,
		// Expiry is checked separately by IsExpired, so claim validation is off here.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for p. Roles are embedded without the storage prefix.
func (c *TokenCodec) Issue(p *Principal) (string, error) {
	subject := strings.TrimSpace(p.Username())
	if subject == "" {
		return "", errors.New("auth: cannot issue token without subject")
	}
	roles := NormalizeRoles(p.Roles())
	if len(roles) == 0 {
		return "", errors.New("auth: cannot issue token without roles")
	}

	// NumericDate has second precision; truncating keeps exp == iat + TTL exact.
	now := c.now().UTC().Truncate(time.Second)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and structure of token and returns its
// claims. It does not check expiry; callers must also call IsExpired (or
// use IsValid / Check).
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// ExtractSubject returns the token subject, or "" when the token cannot be
// parsed or verified. It never panics so callers can fall back to anonymous.
func (c *TokenCodec) ExtractSubject(token string) string {
	claims, err := c.Verify(token)
	if err != nil {
		return ""
	}
	return claims.Subject
}

// Check returns nil when the token verifies, belongs to expectedUsername and
// has not expired. Otherwise it returns the reason.
func (c *TokenCodec) Check(token, expectedUsername string) error {
	claims, err := c.Verify(token)
	if err != nil {
		return err
	}
	if claims.Subject != expectedUsername {
		return ErrSubjectMismatch
	}
	if c.expired(claims) {
		return ErrTokenExpired
	}
	return nil
}

// IsValid reports whether token verifies, names expectedUsername and is
// not expired.
func (c *TokenCodec) IsValid(token, expectedUsername string) bool {
	return c.Check(token, expectedUsername) == nil
}

// IsExpired reports whether the token's exp is in the past. Tokens that
// cannot be verified are treated as expired.
func (c *TokenCodec) IsExpired(token string) bool {
	claims, err := c.Verify(token)
	if err != nil {
		return true
	}
	return c.expired(claims)
}

func (c *TokenCodec) expired(claims *Claims) bool {
	return claims.ExpiresAt.Time.Before(c.now())
}

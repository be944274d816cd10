package auth

import "errors"

var (
	// ErrMalformedToken means the token structure could not be parsed.
	ErrMalformedToken = errors.New("auth: malformed token")
	// ErrInvalidSignature means the token parsed but its signature did not verify.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	// ErrTokenExpired means the token verified but its exp claim has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrSubjectMismatch means the token subject differs from the expected username.
	ErrSubjectMismatch = errors.New("auth: token subject mismatch")
	// ErrPrincipalNotFound means a token subject no longer resolves to a user.
	ErrPrincipalNotFound = errors.New("auth: principal not found")

	// ErrUnauthenticated is returned when a route needs a principal and none is present.
	ErrUnauthenticated = errors.New("auth: authentication required")
	// ErrForbidden is returned when the principal lacks a permitted role or ownership.
	ErrForbidden = errors.New("auth: access denied")
)

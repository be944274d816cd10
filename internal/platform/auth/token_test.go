package auth

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only-0123")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(t *testing.T, now time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSigningKey, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestNewTokenCodec_ShortKey(t *testing.T) {
	if _, err := NewTokenCodec([]byte("too-short")); err == nil {
		t.Fatal("expected error for key shorter than 32 bytes")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)

	cases := []struct {
		name     string
		username string
		roles    []string
		want     []string
	}{
		{"single role", "dr.silva", []string{"MEDICO"}, []string{"MEDICO"}},
		{"prefixed roles", "admin", []string{"ROLE_ADMIN", "ROLE_MEDICO"}, []string{"ADMIN", "MEDICO"}},
		{"order preserved", "maria", []string{"PACIENTE", "ADMIN"}, []string{"PACIENTE", "ADMIN"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(NewPrincipal(tt.username, tt.roles))
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			claims, err := codec.Verify(token)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if claims.Subject != tt.username {
				t.Errorf("subject = %q, want %q", claims.Subject, tt.username)
			}
			if !reflect.DeepEqual(claims.Roles, tt.want) {
				t.Errorf("roles = %v, want %v", claims.Roles, tt.want)
			}
			if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != TokenTTL {
				t.Errorf("exp - iat = %v, want %v", got, TokenTTL)
			}
			if !claims.IssuedAt.Time.Equal(now) {
				t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, now)
			}
		})
	}
}

func TestIssue_Deterministic(t *testing.T) {
	codec := newTestCodec(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	p := NewPrincipal("dr.silva", []string{"MEDICO"})
	a, _ := codec.Issue(p)
	b, _ := codec.Issue(p)
	if a != b {
		t.Error("expected identical tokens for identical inputs and clock")
	}
}

func TestIssue_RejectsEmptySubjectOrRoles(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	if _, err := codec.Issue(NewPrincipal("", []string{"ADMIN"})); err == nil {
		t.Error("expected error for empty subject")
	}
	if _, err := codec.Issue(NewPrincipal("bob", nil)); err == nil {
		t.Error("expected error for empty roles")
	}
}

func TestIsExpired_AcrossWindow(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	token, err := newTestCodec(t, issuedAt).Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if newTestCodec(t, issuedAt).IsExpired(token) {
		t.Error("token expired immediately after issuance")
	}
	if newTestCodec(t, issuedAt.Add(TokenTTL)).IsExpired(token) {
		t.Error("token expired exactly at exp; want exp < now semantics")
	}
	later := newTestCodec(t, issuedAt.Add(TokenTTL+time.Second))
	if !later.IsExpired(token) {
		t.Error("token not expired after window elapsed")
	}
	if later.IsValid(token, "dr.silva") {
		t.Error("expired token reported valid")
	}
	if err := later.Check(token, "dr.silva"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Check err = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, err := codec.Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify err = %v, want ErrInvalidSignature", err)
	}
	if codec.IsValid(tampered, "dr.silva") {
		t.Error("tampered token reported valid")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	other, err := NewTokenCodec([]byte("another-signing-key-with-32-bytes!!"))
	if err != nil {
		t.Fatal(err)
	}
	token, _ := other.Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))

	if _, err := newTestCodec(t, time.Now()).Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify err = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Roles: []string{"ADMIN"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestCodec(t, time.Now()).Verify(token); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}

func TestVerify_Malformed(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	for _, token := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Verify(%q) err = %v, want ErrMalformedToken", token, err)
		}
		if got := codec.ExtractSubject(token); got != "" {
			t.Errorf("ExtractSubject(%q) = %q, want empty", token, got)
		}
		if !codec.IsExpired(token) {
			t.Errorf("IsExpired(%q) = false, want true for unparsable token", token)
		}
	}
}

func TestIsValid_SubjectMismatch(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _ := codec.Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))

	if !codec.IsValid(token, "dr.silva") {
		t.Error("expected token valid for its own subject")
	}
	if codec.IsValid(token, "someone.else") {
		t.Error("expected token invalid for a different username")
	}
	if err := codec.Check(token, "someone.else"); !errors.Is(err, ErrSubjectMismatch) {
		t.Errorf("Check err = %v, want ErrSubjectMismatch", err)
	}
}

func TestIsValid_AlreadyExpiredAtIssue(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	claims := Claims{
		Roles: []string{"MEDICO"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dr.silva",
			IssuedAt:  jwt.NewNumericDate(now.Add(-TokenTTL - time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatal(err)
	}
	codec := newTestCodec(t, now)

	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("signature should verify, got %v", err)
	}
	if codec.IsValid(token, "dr.silva") {
		t.Error("expected expired token to be invalid despite a correct signature")
	}
}

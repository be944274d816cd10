package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type mockResolver struct {
	users map[string][]string
	err   error
	calls int
}

func (m *mockResolver) LoadByUsername(_ context.Context, username string) (*UserDetails, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	roles, ok := m.users[username]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return &UserDetails{Username: username, Roles: roles}, nil
}

// runAuthenticate executes the middleware and returns the principal the
// downstream handler observed.
func runAuthenticate(t *testing.T, codec *TokenCodec, resolver PrincipalResolver, header string, pre *Principal) (*Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	if pre != nil {
		req = req.WithContext(WithPrincipal(req.Context(), pre))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Principal
	var found, called bool
	handler := func(c echo.Context) error {
		called = true
		seen, found = PrincipalFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	if err := Authenticate(codec, resolver, zerolog.Nop())(handler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if !called {
		t.Fatal("middleware did not call next")
	}
	return seen, found
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Token abc", ""},
		{"Basic dXNlcjpwYXNz", ""},
	}
	for _, tt := range tests {
		if got := BearerToken(tt.header); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestAuthenticate_NoTokenIsAnonymous(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	resolver := &mockResolver{}
	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer", "Bearer garbage"} {
		if _, ok := runAuthenticate(t, codec, resolver, header, nil); ok {
			t.Errorf("header %q: expected anonymous request", header)
		}
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times for untrusted tokens", resolver.calls)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _ := codec.Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))
	resolver := &mockResolver{users: map[string][]string{"dr.silva": {"ROLE_MEDICO"}}}

	p, ok := runAuthenticate(t, codec, resolver, "Bearer "+token, nil)
	if !ok {
		t.Fatal("expected principal to be installed")
	}
	if p.Username() != "dr.silva" {
		t.Errorf("username = %q, want dr.silva", p.Username())
	}
	if !reflect.DeepEqual(p.Roles(), []string{"MEDICO"}) {
		t.Errorf("roles = %v, want [MEDICO]", p.Roles())
	}
	if !reflect.DeepEqual(p.Authorities(), []string{"ROLE_MEDICO"}) {
		t.Errorf("authorities = %v, want [ROLE_MEDICO]", p.Authorities())
	}
}

func TestAuthenticate_RolesComeFromResolver(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _ := codec.Issue(NewPrincipal("dr.silva", []string{"ADMIN"}))
	resolver := &mockResolver{users: map[string][]string{"dr.silva": {"MEDICO"}}}

	p, ok := runAuthenticate(t, codec, resolver, "Bearer "+token, nil)
	if !ok {
		t.Fatal("expected principal")
	}
	if p.HasRole(RoleAdmin) {
		t.Error("role from token claim should not be trusted over the store")
	}
	if !p.HasRole(RoleMedico) {
		t.Error("expected store role MEDICO")
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * TokenTTL)
	token, _ := newTestCodec(t, issuedAt).Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))
	resolver := &mockResolver{users: map[string][]string{"dr.silva": {"MEDICO"}}}

	if _, ok := runAuthenticate(t, newTestCodec(t, time.Now()), resolver, "Bearer "+token, nil); ok {
		t.Error("expired token must not authenticate")
	}
	if resolver.calls != 0 {
		t.Error("resolver should not be consulted for an expired token")
	}
}

func TestAuthenticate_UnknownPrincipal(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _ := codec.Issue(NewPrincipal("ghost", []string{"MEDICO"}))

	if _, ok := runAuthenticate(t, codec, &mockResolver{users: map[string][]string{}}, "Bearer "+token, nil); ok {
		t.Error("deleted user must not authenticate")
	}
	if _, ok := runAuthenticate(t, codec, &mockResolver{err: errors.New("db down")}, "Bearer "+token, nil); ok {
		t.Error("resolver failure must degrade to anonymous")
	}
}

func TestAuthenticate_DoesNotOverwriteExistingPrincipal(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _ := codec.Issue(NewPrincipal("dr.silva", []string{"MEDICO"}))
	resolver := &mockResolver{users: map[string][]string{"dr.silva": {"MEDICO"}}}
	existing := NewPrincipal("admin", []string{"ADMIN"})

	p, ok := runAuthenticate(t, codec, resolver, "Bearer "+token, existing)
	if !ok || p.Username() != "admin" {
		t.Errorf("principal = %v, want existing admin principal", p)
	}
	if resolver.calls != 0 {
		t.Error("resolver should not run when a principal is already present")
	}
}

func TestPrincipal_Immutable(t *testing.T) {
	p := NewPrincipal(" bob ", []string{"role_admin", "ADMIN", "", "Medico"})
	if p.Username() != "bob" {
		t.Errorf("username = %q", p.Username())
	}
	roles := p.Roles()
	if !reflect.DeepEqual(roles, []string{"ADMIN", "MEDICO"}) {
		t.Fatalf("roles = %v", roles)
	}
	roles[0] = "PACIENTE"
	if p.HasRole(RolePaciente) {
		t.Error("mutating Roles() result changed the principal")
	}
}

func TestAuthorizeOwner(t *testing.T) {
	patient := WithPrincipal(context.Background(), NewPrincipal("maria", []string{"PACIENTE"}))
	doctor := WithPrincipal(context.Background(), NewPrincipal("dr.silva", []string{"MEDICO"}))

	if err := AuthorizeOwner(context.Background(), "maria", RoleAdmin); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous: err = %v, want ErrUnauthenticated", err)
	}
	if err := AuthorizeOwner(patient, "maria", RoleAdmin, RoleMedico); err != nil {
		t.Errorf("owner: err = %v", err)
	}
	if err := AuthorizeOwner(patient, "joao", RoleAdmin, RoleMedico); !errors.Is(err, ErrForbidden) {
		t.Errorf("other patient: err = %v, want ErrForbidden", err)
	}
	if err := AuthorizeOwner(doctor, "maria", RoleAdmin, RoleMedico); err != nil {
		t.Errorf("staff: err = %v", err)
	}
	if err := AuthorizeOwner(patient, "", RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("unowned resource: err = %v, want ErrForbidden", err)
	}

	lookalike := WithPrincipal(context.Background(), NewPrincipal("MARIA", []string{"PACIENTE"}))
	if err := AuthorizeOwner(lookalike, "maria", RoleAdmin, RoleMedico); !errors.Is(err, ErrForbidden) {
		t.Errorf("differently cased username: err = %v, want ErrForbidden", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		wantCode  int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"missing role", NewPrincipal("maria", []string{"PACIENTE"}), http.StatusForbidden},
		{"has role", NewPrincipal("root", []string{"ADMIN"}), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(RoleAdmin)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			code := rec.Code
			if err != nil {
				httpErr, ok := err.(*echo.HTTPError)
				if !ok {
					t.Fatalf("expected echo.HTTPError, got %T", err)
				}
				code = httpErr.Code
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

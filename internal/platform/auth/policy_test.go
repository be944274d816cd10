package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/api/patients", "/api/patients", true},
		{"/api/patients", "/api/patients/", true},
		{"/api/patients", "/api/patients/1", false},
		{"/api/patients/**", "/api/patients", true},
		{"/api/patients/**", "/api/patients/1", true},
		{"/api/patients/**", "/api/patients/1/record", true},
		{"/api/patients/**", "/api/patientsx", false},
		{"/api/*/audit", "/api/x/audit", true},
		{"/api/*/audit", "/api/x/y/audit", false},
		{"/**", "/", true},
		{"/**", "/anything/at/all", true},
		{"/health", "/health", true},
		{"/health", "/healthz", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestNewPolicy_RequiresFallback(t *testing.T) {
	if _, err := NewPolicy(nil); err == nil {
		t.Error("expected error for empty table")
	}
	if _, err := NewPolicy([]Rule{{VerbGet, "/health", Public()}}); err == nil {
		t.Error("expected error for table without fallback")
	}
	if _, err := NewPolicy([]Rule{{VerbAny, "/**", Public()}}); err == nil {
		t.Error("expected error for a public fallback")
	}
	if _, err := NewPolicy([]Rule{{VerbAny, "/a/**/b", Public()}, {VerbAny, "/**", Authenticated()}}); err == nil {
		t.Error("expected error for ** in the middle of a pattern")
	}
	if _, err := NewPolicy([]Rule{{VerbGet, "/x", Roles()}, {VerbAny, "/**", Authenticated()}}); err == nil {
		t.Error("expected error for empty role set")
	}
	if _, err := NewPolicy(DefaultRules()); err != nil {
		t.Errorf("default rules rejected: %v", err)
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p := MustPolicy([]Rule{
		{VerbGet, "/api/things", Roles(RoleAdmin)},
		{VerbGet, "/api/things/**", Public()},
		{VerbAny, "/**", Authenticated()},
	})
	if got := p.Evaluate(http.MethodGet, "/api/things", nil); got != DecisionUnauthenticated {
		t.Errorf("list = %v, want unauthenticated", got)
	}
	if got := p.Evaluate(http.MethodGet, "/api/things/1", nil); got != DecisionAllow {
		t.Errorf("item = %v, want allow", got)
	}
}

var (
	admin    = NewPrincipal("root", []string{RoleAdmin})
	medico   = NewPrincipal("dr.silva", []string{RoleMedico})
	paciente = NewPrincipal("maria", []string{RolePaciente})
	noRoles  = NewPrincipal("nobody", nil)
)

func TestDefaultPolicy_Matrix(t *testing.T) {
	policy := MustPolicy(DefaultRules())

	type expect struct {
		anon, admin, medico, paciente Decision
	}
	allowAll := expect{DecisionAllow, DecisionAllow, DecisionAllow, DecisionAllow}
	staff := expect{DecisionUnauthenticated, DecisionAllow, DecisionAllow, DecisionForbidden}
	staffOrPatient := expect{DecisionUnauthenticated, DecisionAllow, DecisionAllow, DecisionAllow}
	adminOnly := expect{DecisionUnauthenticated, DecisionAllow, DecisionForbidden, DecisionForbidden}
	authenticated := expect{DecisionUnauthenticated, DecisionAllow, DecisionAllow, DecisionAllow}

	tests := []struct {
		method, path string
		want         expect
	}{
		{http.MethodPost, "/api/auth/login", allowAll},
		{http.MethodPost, "/api/auth/register/patient", allowAll},
		{http.MethodGet, "/swagger/index.html", allowAll},
		{http.MethodGet, "/docs", allowAll},
		{http.MethodGet, "/health", allowAll},
		{http.MethodGet, "/metrics", adminOnly},

		{http.MethodPost, "/api/patients", staff},
		{http.MethodGet, "/api/patients", staff},
		{http.MethodGet, "/api/patients/1", staffOrPatient},
		{http.MethodPut, "/api/patients/1", staff},
		{http.MethodDelete, "/api/patients/1", adminOnly},

		{http.MethodPost, "/api/appointments", staff},
		{http.MethodGet, "/api/appointments", staff},
		{http.MethodGet, "/api/appointments/7", staffOrPatient},
		{http.MethodPut, "/api/appointments/7", staff},
		{http.MethodDelete, "/api/appointments/7", adminOnly},

		{http.MethodPost, "/api/practitioners", adminOnly},
		{http.MethodGet, "/api/practitioners", staff},
		{http.MethodGet, "/api/practitioners/3", staffOrPatient},
		{http.MethodPut, "/api/practitioners/3", adminOnly},
		{http.MethodDelete, "/api/practitioners/3", adminOnly},

		{http.MethodPost, "/api/records", staff},
		{http.MethodGet, "/api/records", staff},
		{http.MethodGet, "/api/records/patient/1", staffOrPatient},
		{http.MethodPut, "/api/records/4", staff},
		{http.MethodDelete, "/api/records/4", adminOnly},

		{http.MethodGet, "/api/audit", adminOnly},
		{http.MethodGet, "/api/audit/users/dr.silva", adminOnly},

		{http.MethodGet, "/api/users/me", authenticated},
		{http.MethodPatch, "/api/patients/1", authenticated},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			checks := []struct {
				who  string
				p    *Principal
				want Decision
			}{
				{"anonymous", nil, tt.want.anon},
				{"admin", admin, tt.want.admin},
				{"medico", medico, tt.want.medico},
				{"paciente", paciente, tt.want.paciente},
			}
			for _, c := range checks {
				if got := policy.Evaluate(tt.method, tt.path, c.p); got != c.want {
					t.Errorf("%s: got %v, want %v", c.who, got, c.want)
				}
			}
		})
	}
}

func TestDefaultPolicy_PrincipalWithoutRoles(t *testing.T) {
	policy := MustPolicy(DefaultRules())
	if got := policy.Evaluate(http.MethodGet, "/api/patients/1", noRoles); got != DecisionForbidden {
		t.Errorf("got %v, want forbidden", got)
	}
	if got := policy.Evaluate(http.MethodGet, "/api/anything", noRoles); got != DecisionAllow {
		t.Errorf("fallback got %v, want allow", got)
	}
}

func TestAuthorize_Middleware(t *testing.T) {
	policy := MustPolicy(DefaultRules())

	tests := []struct {
		name      string
		method    string
		path      string
		principal *Principal
		wantCode  int
	}{
		{"public anonymous", http.MethodPost, "/api/auth/login", nil, http.StatusOK},
		{"protected anonymous", http.MethodGet, "/api/patients", nil, http.StatusUnauthorized},
		{"staff list", http.MethodGet, "/api/patients", medico, http.StatusOK},
		{"medico delete", http.MethodDelete, "/api/patients/1", medico, http.StatusForbidden},
		{"admin delete", http.MethodDelete, "/api/patients/1", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handlerRan := false
			err := Authorize(policy, zerolog.Nop())(func(c echo.Context) error {
				handlerRan = true
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
			if handlerRan != (tt.wantCode == http.StatusOK) {
				t.Errorf("handlerRan = %v for code %d", handlerRan, tt.wantCode)
			}
		})
	}
}

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Verb is the HTTP method a Rule applies to. VerbAny matches every method.
type Verb string

const (
	VerbGet    Verb = http.MethodGet
	VerbPost   Verb = http.MethodPost
	VerbPut    Verb = http.MethodPut
	VerbDelete Verb = http.MethodDelete
	VerbAny    Verb = "ANY"
)

type accessKind int

const (
	accessRoles accessKind = iota
	accessAuthenticated
	accessPublic
)

// Access describes who a Rule admits.
type Access struct {
	kind  accessKind
	roles []string
}

// Public admits everyone, including anonymous callers.
func Public() Access { return Access{kind: accessPublic} }

// Authenticated admits any principal regardless of role.
func Authenticated() Access { return Access{kind: accessAuthenticated} }

// Roles admits principals holding at least one of roles.
func Roles(roles ...string) Access {
	return Access{kind: accessRoles, roles: NormalizeRoles(roles)}
}

func (a Access) String() string {
	switch a.kind {
	case accessPublic:
		return "PUBLIC"
	case accessAuthenticated:
		return "ANY_AUTHENTICATED"
	default:
		return strings.Join(a.roles, ",")
	}
}

// Rule maps a verb and path pattern to an Access. Patterns are slash
// separated; "*" matches exactly one segment and a trailing "**" matches
// the prefix itself and anything below it.
type Rule struct {
	Verb    Verb
	Pattern string
	Access  Access
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Verb, r.Pattern, r.Access)
}

func (r Rule) matches(method, path string) bool {
	if r.Verb != VerbAny && !strings.EqualFold(string(r.Verb), method) {
		return false
	}
	return matchPattern(r.Pattern, path)
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Policy is an ordered, first-match rule table. It is immutable after
// construction and safe for concurrent use.
type Policy struct {
	rules []Rule
}

// NewPolicy validates rules and returns a Policy. The table must end with
// the "ANY /**" authenticated fallback so no route is left ungoverned.
func NewPolicy(rules []Rule) (*Policy, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("auth: policy has no rules")
	}
	for i, r := range rules {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("auth: rule %d: pattern %q must start with /", i, r.Pattern)
		}
		if idx := strings.Index(r.Pattern, "**"); idx >= 0 && idx != len(r.Pattern)-2 {
			return nil, fmt.Errorf("auth: rule %d: ** only allowed at the end of %q", i, r.Pattern)
		}
		if r.Access.kind == accessRoles && len(r.Access.roles) == 0 {
			return nil, fmt.Errorf("auth: rule %d (%s): empty role set", i, r.Pattern)
		}
	}
	last := rules[len(rules)-1]
	if last.Verb != VerbAny || last.Pattern != "/**" || last.Access.kind != accessAuthenticated {
		return nil, fmt.Errorf("auth: last rule must be ANY /** -> ANY_AUTHENTICATED, got %s", last)
	}
	return &Policy{rules: append([]Rule(nil), rules...)}, nil
}

// MustPolicy is like NewPolicy but panics on an invalid table.
func MustPolicy(rules []Rule) *Policy {
	p, err := NewPolicy(rules)
	if err != nil {
		panic(err)
	}
	return p
}

// Rules returns a copy of the rule table.
func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Match returns the first rule matching method and path.
func (p *Policy) Match(method, path string) (Rule, bool) {
	for _, r := range p.rules {
		if r.matches(method, path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Evaluate decides whether principal (nil for anonymous) may call method
// on path.
func (p *Policy) Evaluate(method, path string, principal *Principal) Decision {
	r, ok := p.Match(method, path)
	if !ok {
		if principal == nil {
			return DecisionUnauthenticated
		}
		return DecisionForbidden
	}
	switch r.Access.kind {
	case accessPublic:
		return DecisionAllow
	case accessAuthenticated:
		if principal == nil {
			return DecisionUnauthenticated
		}
		return DecisionAllow
	default:
		if principal == nil {
			return DecisionUnauthenticated
		}
		if principal.HasAnyRole(r.Access.roles...) {
			return DecisionAllow
		}
		return DecisionForbidden
	}
}

func matchPattern(pattern, path string) bool {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if pattern == "/**" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return matchSegments(splitPath(prefix), splitPath(path), true)
	}
	return matchSegments(splitPath(pattern), splitPath(path), false)
}

func matchSegments(pattern, path []string, prefixOnly bool) bool {
	if len(path) < len(pattern) || (!prefixOnly && len(path) != len(pattern)) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func staffResource(prefix string, create, list, read, update, remove Access) []Rule {
	return []Rule{
		{VerbPost, prefix + "/**", create},
		{VerbGet, prefix, list},
		{VerbGet, prefix + "/**", read},
		{VerbPut, prefix + "/**", update},
		{VerbDelete, prefix + "/**", remove},
	}
}

// DefaultRules returns the route table of the hospital API.
func DefaultRules() []Rule {
	staff := Roles(RoleAdmin, RoleMedico)
	staffOrPatient := Roles(RoleAdmin, RoleMedico, RolePaciente)
	admin := Roles(RoleAdmin)

	rules := []Rule{
		{VerbAny, "/api/auth/**", Public()},
		{VerbAny, "/swagger/**", Public()},
		{VerbAny, "/docs/**", Public()},
		{VerbGet, "/health", Public()},
		{VerbGet, "/metrics", admin},
	}
	rules = append(rules, staffResource("/api/patients", staff, staff, staffOrPatient, staff, admin)...)
	rules = append(rules, staffResource("/api/appointments", staff, staff, staffOrPatient, staff, admin)...)
	rules = append(rules, staffResource("/api/practitioners", admin, staff, staffOrPatient, admin, admin)...)
	rules = append(rules, staffResource("/api/records", staff, staff, staffOrPatient, staff, admin)...)
	rules = append(rules,
		Rule{VerbAny, "/api/audit/**", admin},
		Rule{VerbAny, "/**", Authenticated()},
	)
	return rules
}

var authzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hospital_authz_decisions_total",
	Help: "Authorization decisions by result.",
}, []string{"decision"})

// Authorize returns middleware enforcing policy before the handler runs.
// It must be installed after Authenticate.
func Authorize(policy *Policy, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal, _ := PrincipalFromContext(req.Context())
			decision := policy.Evaluate(req.Method, req.URL.Path, principal)
			authzDecisions.WithLabelValues(decision.String()).Inc()

			switch decision {
			case DecisionAllow:
				return next(c)
			case DecisionUnauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				logger.Info().
					Str("user", principal.Username()).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Msg("access denied")
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
		}
	}
}

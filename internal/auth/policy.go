package auth

import (
	"net/http"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

var (
	ErrMissingAuthentication = apperrors.NewDomainError("UNAUTHORIZED", "authentication required", http.StatusUnauthorized, nil)
	ErrInsufficientRole      = apperrors.NewDomainError("FORBIDDEN", "insufficient role", http.StatusForbidden, nil)
)

type requirementKind int

const (
	requirePublic requirementKind = iota
	requireAuthenticated
	requireRole
)

// Requirement is what a rule demands from the caller.
type Requirement struct {
	kind  requirementKind
	roles []domain.Role
}

// Public lets every request through, anonymous or not.
func Public() Requirement { return Requirement{kind: requirePublic} }

// AnyAuthenticated requires an Identity.
func AnyAuthenticated() Requirement { return Requirement{kind: requireAuthenticated} }

// RoleIn requires an Identity whose role is one of roles.
func RoleIn(roles ...domain.Role) Requirement {
	return Requirement{kind: requireRole, roles: append([]domain.Role(nil), roles...)}
}

func (r Requirement) check(identity *domain.Identity) error {
	switch r.kind {
	case requirePublic:
		return nil
	case requireRole:
		if identity == nil {
			return ErrMissingAuthentication
		}
		if !identity.HasRole(r.roles...) {
			return ErrInsufficientRole
		}
		return nil
	default:
		if identity == nil {
			return ErrMissingAuthentication
		}
		return nil
	}
}

// Rule maps a method and path pattern to a Requirement.
// An empty Method matches every method. Pattern segments may be "*" for one
// segment, and a trailing "/**" matches the prefix and anything below it.
// Paths are compared case-insensitively.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

// Matches reports whether the rule applies to the request line.
func (r Rule) Matches(method, reqPath string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	return matchPattern(strings.ToLower(r.Pattern), cleanPath(reqPath))
}

// Policy evaluates rules top to bottom; the first match decides.
// Requests matching no rule must be authenticated.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from an ordered rule list.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// Evaluate returns nil when the identity may perform the request.
func (p *Policy) Evaluate(method, reqPath string, identity *domain.Identity) error {
	for _, rule := range p.rules {
		if rule.Matches(method, reqPath) {
			return rule.Requirement.check(identity)
		}
	}
	return AnyAuthenticated().check(identity)
}

// Handle enforces the policy for the current request.
func (p *Policy) Handle(c *fiber.Ctx) error {
	identity, _ := IdentityFromContext(c)
	if err := p.Evaluate(c.Method(), c.Path(), identity); err != nil {
		return err
	}
	return c.Next()
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return strings.ToLower(path.Clean("/" + p))
}

func matchPattern(pattern, reqPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "" {
			return true
		}
		if reqPath == prefix {
			return true
		}
		if !strings.HasPrefix(reqPath, prefix+"/") {
			// prefix may itself contain wildcards
			return matchSegments(splitPath(prefix), splitPath(reqPath), true)
		}
		return true
	}
	return matchSegments(splitPath(pattern), splitPath(reqPath), false)
}

func matchSegments(pattern, segments []string, prefixOnly bool) bool {
	if len(segments) < len(pattern) || (!prefixOnly && len(segments) != len(pattern)) {
		return false
	}
	for i, p := range pattern {
		if p == "*" {
			continue
		}
		if ok, _ := path.Match(p, segments[i]); !ok {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

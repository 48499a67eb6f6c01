package auth

import (
	"net/http"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// DefaultRules is the route table of the public API.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodOptions, Pattern: "/**", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/health/**", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/metrics", Requirement: Public()},
		{Pattern: "/api/auth/signup", Requirement: Public()},
		{Pattern: "/api/auth/login", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/api/products/**", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/api/reviews/**", Requirement: Public()},
		{Pattern: "/api/sales/**", Requirement: RoleIn(domain.RoleSeller)},
		{Pattern: "/api/seller/**", Requirement: RoleIn(domain.RoleSeller)},
		{Pattern: "/api/admin/**", Requirement: RoleIn(domain.RoleAdmin)},
	}
}

// DefaultPolicy returns the policy built from DefaultRules.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultRules()...)
}

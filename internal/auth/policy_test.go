package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/commerce-service/internal/domain"
)

var (
	customer = &domain.Identity{UserID: 1, Principal: "c@example.com", Role: domain.RoleCustomer}
	seller   = &domain.Identity{UserID: 2, Principal: "s@example.com", Role: domain.RoleSeller}
	admin    = &domain.Identity{UserID: 3, Principal: "a@example.com", Role: domain.RoleAdmin}
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		method   string
		path     string
		identity *domain.Identity
		want     error
	}{
		{"preflight is public", http.MethodOptions, "/api/orders", nil, nil},
		{"health is public", http.MethodGet, "/health/ready", nil, nil},
		{"metrics is public", http.MethodGet, "/metrics", nil, nil},
		{"signup is public", http.MethodPost, "/api/auth/signup", nil, nil},
		{"login is public", http.MethodPost, "/api/auth/login", nil, nil},
		{"me needs identity", http.MethodGet, "/api/auth/me", nil, ErrMissingAuthentication},
		{"catalogue root is public", http.MethodGet, "/api/products", nil, nil},
		{"product detail is public", http.MethodGet, "/api/products/7", nil, nil},
		{"product writes fall through", http.MethodPost, "/api/products", nil, ErrMissingAuthentication},
		{"reviews read is public", http.MethodGet, "/api/reviews/product/7", nil, nil},
		{"review write needs identity", http.MethodPost, "/api/reviews", nil, ErrMissingAuthentication},
		{"review write by customer", http.MethodPost, "/api/reviews", customer, nil},
		{"sales anonymous", http.MethodGet, "/api/sales/stats", nil, ErrMissingAuthentication},
		{"sales customer", http.MethodGet, "/api/sales/stats", customer, ErrInsufficientRole},
		{"sales seller", http.MethodGet, "/api/sales/stats", seller, nil},
		{"sales admin has no implicit bypass", http.MethodGet, "/api/sales/stats", admin, ErrInsufficientRole},
		{"seller area customer", http.MethodPut, "/api/seller/products/1", customer, ErrInsufficientRole},
		{"seller area seller", http.MethodPatch, "/api/seller/orders/1/status", seller, nil},
		{"admin area seller", http.MethodGet, "/api/admin/users", seller, ErrInsufficientRole},
		{"admin area admin", http.MethodGet, "/api/admin/users", admin, nil},
		{"unmatched anonymous", http.MethodGet, "/api/orders/my", nil, ErrMissingAuthentication},
		{"unmatched authenticated", http.MethodGet, "/api/orders/my", customer, nil},
		{"prefix is segment aligned", http.MethodGet, "/api/salesforce", customer, nil},
		{"dot segments are cleaned", http.MethodGet, "/api/products/../sales/stats", customer, ErrInsufficientRole},
		{"upper-case seller area", http.MethodPost, "/API/SELLER/products", customer, ErrInsufficientRole},
		{"mixed-case sales", http.MethodGet, "/api/Sales/stats", customer, ErrInsufficientRole},
		{"mixed-case public read", http.MethodGet, "/api/Products/7", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Evaluate(tc.method, tc.path, tc.identity)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	policy := NewPolicy(
		Rule{Pattern: "/docs/internal", Requirement: RoleIn(domain.RoleAdmin)},
		Rule{Pattern: "/docs/**", Requirement: Public()},
	)
	assert.ErrorIs(t, policy.Evaluate(http.MethodGet, "/docs/internal", customer), ErrInsufficientRole)
	assert.NoError(t, policy.Evaluate(http.MethodGet, "/docs/public", nil))

	reversed := NewPolicy(
		Rule{Pattern: "/docs/**", Requirement: Public()},
		Rule{Pattern: "/docs/internal", Requirement: RoleIn(domain.RoleAdmin)},
	)
	assert.NoError(t, reversed.Evaluate(http.MethodGet, "/docs/internal", nil))
}

func TestRule_Matches(t *testing.T) {
	cases := []struct {
		rule   Rule
		method string
		path   string
		want   bool
	}{
		{Rule{Pattern: "/a/b"}, http.MethodGet, "/a/b", true},
		{Rule{Pattern: "/a/b"}, http.MethodGet, "/a/b/c", false},
		{Rule{Pattern: "/a/*/c"}, http.MethodGet, "/a/x/c", true},
		{Rule{Pattern: "/a/*/c"}, http.MethodGet, "/a/x/y/c", false},
		{Rule{Pattern: "/a/**"}, http.MethodGet, "/a", true},
		{Rule{Pattern: "/a/**"}, http.MethodGet, "/a/x/y/z", true},
		{Rule{Pattern: "/a/**"}, http.MethodGet, "/ab", false},
		{Rule{Pattern: "/a/*/c/**"}, http.MethodGet, "/a/x/c/d/e", true},
		{Rule{Pattern: "/**"}, http.MethodDelete, "/anything", true},
		{Rule{Method: http.MethodGet, Pattern: "/a"}, http.MethodPost, "/a", false},
		{Rule{Method: http.MethodGet, Pattern: "/a"}, "get", "/a", true},
		{Rule{Pattern: "/a"}, http.MethodGet, "/a/", true},
		{Rule{Pattern: "/a/b"}, http.MethodGet, "/A/b", true},
		{Rule{Pattern: "/Docs/**"}, http.MethodGet, "/docs/x", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.rule.Matches(tc.method, tc.path), "%s %s against %s", tc.method, tc.path, tc.rule.Pattern)
	}
}

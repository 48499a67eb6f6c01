package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/repository/memory"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "commerce-service", Version: "test", RequestTimeoutSeconds: 5},
		Auth: config.AuthConfig{JWTSecret: "an-application-test-secret-of-32-bytes+", AccessTokenTTLMinutes: 15, BcryptCost: 4},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, MaxAgeSeconds: 600},
	}
	app, err := New(cfg, Dependencies{Repos: Repositories{
		Users:    store.Users(),
		Products: store.Products(),
		Orders:   store.Orders(),
		Reviews:  store.Reviews(),
	}})
	require.NoError(t, err)
	return app
}

type response struct {
	status int
	body   map[string]any
}

func (r response) data() map[string]any {
	d, _ := r.body["data"].(map[string]any)
	return d
}

func (r response) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func signup(t *testing.T, app *fiber.App, email, role string) (string, int64) {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "User " + email, "email": email, "password": "password123", "role": role,
	})
	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	authBlock := resp.data()["auth"].(map[string]any)
	user := resp.data()["user"].(map[string]any)
	return authBlock["token"].(string), int64(user["id"].(float64))
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	token, _ := signup(t, app, "ann@example.com", "")
	assert.NotEmpty(t, token)

	dup := do(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, dup.status)
	assert.Equal(t, "EMAIL_TAKEN", dup.errorCode())

	bad := do(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.status)
	assert.Equal(t, "INVALID_CREDENTIALS", bad.errorCode())
	assert.Nil(t, bad.data())

	ok := do(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, ok.status)
	user := ok.data()["user"].(map[string]any)
	assert.Equal(t, "CUSTOMER", user["role"])
	assert.NotContains(t, user, "password_hash")

	invalid := do(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "x"})
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	assert.Equal(t, "VALIDATION_FAILED", invalid.errorCode())
}

func TestMeRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)
	token, id := signup(t, app, "ann@example.com", "SELLER")

	anon := do(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, anon.status)
	assert.Equal(t, "UNAUTHORIZED", anon.errorCode())

	me := do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, me.status)
	user := me.data()["user"].(map[string]any)
	assert.Equal(t, float64(id), user["id"])
	assert.Equal(t, "SELLER", user["role"])

	tampered := token[:len(token)-5] + "AAAA" + token[len(token)-1:]
	if tampered == token {
		tampered = token[:len(token)-5] + "BBBB" + token[len(token)-1:]
	}
	rejected := do(t, app, http.MethodGet, "/api/auth/me", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, rejected.status)
}

func TestRoleRules(t *testing.T) {
	app := newTestApp(t)
	customer, _ := signup(t, app, "c@example.com", "CUSTOMER")
	seller, _ := signup(t, app, "s@example.com", "SELLER")

	resp := do(t, app, http.MethodGet, "/api/sales/stats", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "FORBIDDEN", resp.errorCode())

	resp = do(t, app, http.MethodGet, "/api/sales/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = do(t, app, http.MethodGet, "/api/sales/stats", seller, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = do(t, app, http.MethodPost, "/api/seller/products", customer, map[string]any{"name": "Lamp", "price": 100})
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = do(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/API/SELLER/products"},
		{http.MethodPost, "/api/Seller/products"},
		{http.MethodGet, "/api/Sales/stats"},
		{http.MethodGet, "/API/SALES/STATS"},
	} {
		resp = do(t, app, tc.method, tc.path, customer, map[string]any{"name": "Lamp", "price": 100})
		assert.Equal(t, http.StatusForbidden, resp.status, "%s %s", tc.method, tc.path)
	}
	resp = do(t, app, http.MethodGet, "/api/seller/products", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)

	// routing is case-sensitive, so a seller on a mixed-case path gets no handler
	resp = do(t, app, http.MethodGet, "/API/Seller/products", seller, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = do(t, app, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status, "unmatched paths require authentication")

	resp = do(t, app, http.MethodGet, "/api/nowhere", customer, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestOrderAndReviewFlow(t *testing.T) {
	app := newTestApp(t)
	seller, _ := signup(t, app, "s@example.com", "SELLER")
	buyer, _ := signup(t, app, "b@example.com", "CUSTOMER")
	other, _ := signup(t, app, "o@example.com", "CUSTOMER")

	created := do(t, app, http.MethodPost, "/api/seller/products", seller, map[string]any{
		"name": "Lamp", "category": "home", "price": 1500,
	})
	require.Equal(t, http.StatusCreated, created.status, created.body)
	productID := int64(created.data()["id"].(float64))

	review := map[string]any{"product_id": productID, "content": "bright", "rating": 5}
	resp := do(t, app, http.MethodPost, "/api/reviews", buyer, review)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "PURCHASE_REQUIRED", resp.errorCode())

	order := do(t, app, http.MethodPost, "/api/orders", buyer, map[string]any{"product_id": productID, "quantity": 2})
	require.Equal(t, http.StatusCreated, order.status, order.body)
	assert.Equal(t, float64(3000), order.data()["total_price"])
	orderID := int64(order.data()["id"].(float64))

	resp = do(t, app, http.MethodPost, "/api/reviews", buyer, review)
	require.Equal(t, http.StatusCreated, resp.status, resp.body)

	list := do(t, app, http.MethodGet, fmt.Sprintf("/api/reviews/product/%d", productID), "", nil)
	require.Equal(t, http.StatusOK, list.status)
	items := list.body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "User b@example.com", items[0].(map[string]any)["user_name"])

	product := do(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", productID), "", nil)
	require.Equal(t, http.StatusOK, product.status)
	assert.Equal(t, float64(5), product.data()["average_rating"])

	resp = do(t, app, http.MethodPatch, fmt.Sprintf("/api/orders/%d/cancel", orderID), other, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)

	mine := do(t, app, http.MethodGet, "/api/orders/my", buyer, nil)
	require.Equal(t, http.StatusOK, mine.status)
	assert.Len(t, mine.body["data"].([]any), 1)

	shipped := do(t, app, http.MethodPatch, fmt.Sprintf("/api/seller/orders/%d/status", orderID), seller, map[string]any{"status": "SHIPPING"})
	require.Equal(t, http.StatusOK, shipped.status, shipped.body)
	assert.Equal(t, "SHIPPING", shipped.data()["status"])

	resp = do(t, app, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), buyer, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "CANCELLED", resp.data()["status"])

	stats := do(t, app, http.MethodGet, "/api/sales/stats", seller, nil)
	require.Equal(t, http.StatusOK, stats.status)
	row := stats.body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(0), row["total_quantity"])
}

func TestInfrastructureRoutes(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health/live", "", nil).status)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health/ready", "", nil).status)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/metrics", "", nil).status)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

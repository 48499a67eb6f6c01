package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64, role domain.Role, now time.Time) (string, time.Time, error)
}

// AuthHandler exposes signup, login and the current account.
type AuthHandler struct {
	accounts  *service.AccountService
	tokens    TokenIssuer
	validator *dto.Validator
	now       func() time.Time
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService, tokens TokenIssuer, validator *dto.Validator) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, validator: validator, now: time.Now}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.accounts.Signup(c.UserContext(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, user)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.accounts.Get(c.UserContext(), currentIdentity(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, user *domain.User) error {
	token, exp, err := h.tokens.Issue(user.ID, user.Role, h.now())
	if err != nil {
		return err
	}
	return data(c, status, fiber.Map{
		"user": dto.NewUserResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

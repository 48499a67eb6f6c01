package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/observability"
)

const (
	identityKey  = "auth_identity"
	bearerPrefix = "Bearer "
)

// TokenVerifier is the part of TokenCodec the middleware needs.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserLookup resolves token subjects to users.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Authenticator resolves bearer tokens into a request-scoped Identity.
// It never rejects a request; missing or invalid credentials leave the
// request anonymous and the Policy decides.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
	logger *zap.Logger
}

// NewAuthenticator constructs middleware.
func NewAuthenticator(tokens TokenVerifier, users UserLookup, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Handle attaches an Identity to the request when the bearer token is valid.
func (m *Authenticator) Handle(c *fiber.Ctx) error {
	if identity := m.resolve(c); identity != nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

func (m *Authenticator) resolve(c *fiber.Ctx) *domain.Identity {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return nil
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		reason := FailureReason(err)
		observability.RecordTokenFailure(reason)
		m.logger.Debug("bearer token rejected", zap.String("reason", reason), zap.String("path", c.Path()))
		return nil
	}

	userID, err := claims.UserID()
	if err != nil {
		observability.RecordTokenFailure("bad_subject")
		m.logger.Debug("bearer token subject unusable", zap.String("subject", claims.Subject))
		return nil
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observability.RecordTokenFailure("unknown_user")
			m.logger.Debug("bearer token subject has no account", zap.Int64("user_id", userID))
		} else {
			m.logger.Warn("user lookup failed during authentication", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil
	}

	role, ok := domain.ParseRole(string(user.Role))
	if !ok {
		m.logger.Warn("user has unknown role", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
		return nil
	}

	return &domain.Identity{UserID: user.ID, Principal: user.Email, Role: role}
}

// IdentityFromContext returns the caller resolved by Authenticator, if any.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

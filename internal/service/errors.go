package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

var (
	ErrEmailTaken         = apperrors.NewDomainError("EMAIL_TAKEN", "email already registered", http.StatusConflict, nil)
	ErrInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	ErrPurchaseRequired   = apperrors.NewDomainError("PURCHASE_REQUIRED", "only buyers of the product may review it", http.StatusForbidden, nil)
	ErrNotAuthenticated   = apperrors.NewUnauthorized("authentication required")
)

func requireIdentity(identity *domain.Identity) error {
	if identity == nil {
		return ErrNotAuthenticated
	}
	return nil
}

// notFound turns pgx.ErrNoRows into a NOT_FOUND error naming the resource.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event subscriber failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

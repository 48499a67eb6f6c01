package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/service"
)

// ProductInvalidator drops cached catalogue entries for a product.
type ProductInvalidator interface {
	InvalidateProduct(ctx context.Context, id int64) error
}

// CacheInvalidator keeps the product cache in step with writes.
type CacheInvalidator struct {
	cache  ProductInvalidator
	logger *zap.Logger
}

// NewCacheInvalidator builds the subscriber.
func NewCacheInvalidator(cache ProductInvalidator, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// RegisterHandlers subscribes to every event that changes catalogue data.
func (c *CacheInvalidator) RegisterHandlers(dispatcher events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventProductChanged,
		events.EventReviewCreated,
		events.EventReviewDeleted,
	} {
		dispatcher.Subscribe(t, c.handle)
	}
}

func (c *CacheInvalidator) handle(ctx context.Context, event events.Event) error {
	productID, ok := events.ProductIDOf(event)
	if !ok {
		return nil
	}
	if err := c.cache.InvalidateProduct(ctx, productID); err != nil {
		c.logger.Warn("product cache invalidation failed", zap.Int64("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

// StartWorkers registers every event subscriber.
func StartWorkers(dispatcher events.Dispatcher, notifications *service.NotificationService, invalidator *CacheInvalidator) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if dispatcher != nil && invalidator != nil {
		invalidator.RegisterHandlers(dispatcher)
	}
}

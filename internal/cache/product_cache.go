package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/observability"
)

const (
	// listsKey is a hash of catalogue listings keyed by category ("" for all).
	listsKey      = "products:lists"
	productPrefix = "products:item:"
	allCategories = "_all"
	// generationKey is bumped by every invalidation; writes carry the value
	// seen before their database read and are dropped when it moved.
	generationKey = "products:gen"
)

var errStaleWrite = errors.New("product cache generation moved")

// ProductCache stores catalogue reads in Redis. A nil client turns every
// lookup into a miss and every write into a no-op.
type ProductCache struct {
	rc     *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductCache creates the cache.
func NewProductCache(rc *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCache{rc: rc, ttl: ttl, logger: logger}
}

func productKey(id int64) string {
	return productPrefix + strconv.FormatInt(id, 10)
}

func listField(category string) string {
	if category == "" {
		return allCategories
	}
	return category
}

// GetList returns the cached listing for category.
func (c *ProductCache) GetList(ctx context.Context, category string) ([]domain.Product, bool) {
	if c.rc == nil {
		return nil, false
	}
	raw, err := c.rc.HGet(ctx, listsKey, listField(category)).Bytes()
	var products []domain.Product
	if !c.decode(raw, err, &products, "list") {
		return nil, false
	}
	return products, true
}

// Generation returns the invalidation counter. Callers read it before
// loading from the database and hand it back to SetList or SetProduct.
func (c *ProductCache) Generation(ctx context.Context) int64 {
	if c.rc == nil {
		return 0
	}
	gen, err := c.rc.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("read product cache generation", zap.Error(err))
		return -1
	}
	return gen
}

// SetList caches a listing loaded at generation gen; the lists hash shares
// one expiry. A zero ttl keeps entries until invalidated.
func (c *ProductCache) SetList(ctx context.Context, gen int64, category string, products []domain.Product) {
	if c.rc == nil {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("encode product list for cache", zap.Error(err))
		return
	}
	err = c.writeAt(ctx, gen, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, listsKey, listField(category), payload)
		if c.ttl > 0 {
			pipe.Expire(ctx, listsKey, c.ttl)
		}
	})
	if err != nil && !errors.Is(err, errStaleWrite) {
		c.logger.Warn("cache product list", zap.String("category", category), zap.Error(err))
	}
}

// GetProduct returns a cached product.
func (c *ProductCache) GetProduct(ctx context.Context, id int64) (*domain.Product, bool) {
	if c.rc == nil {
		return nil, false
	}
	raw, err := c.rc.Get(ctx, productKey(id)).Bytes()
	var product domain.Product
	if !c.decode(raw, err, &product, "item") {
		return nil, false
	}
	return &product, true
}

// SetProduct caches one product loaded at generation gen.
func (c *ProductCache) SetProduct(ctx context.Context, gen int64, product *domain.Product) {
	if c.rc == nil || product == nil {
		return
	}
	payload, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn("encode product for cache", zap.Error(err))
		return
	}
	err = c.writeAt(ctx, gen, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, productKey(product.ID), payload, c.ttl)
	})
	if err != nil && !errors.Is(err, errStaleWrite) {
		c.logger.Warn("cache product", zap.Int64("product_id", product.ID), zap.Error(err))
	}
}

// writeAt applies fill in a MULTI block guarded by WATCH on the generation.
func (c *ProductCache) writeAt(ctx context.Context, gen int64, fill func(redis.Pipeliner)) error {
	if gen < 0 {
		return errStaleWrite
	}
	err := c.rc.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleWrite
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			fill(pipe)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleWrite
	}
	return err
}

// InvalidateProduct drops the product entry and every cached listing, and
// bumps the generation so in-flight reads do not write stale data back.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id int64) error {
	if c.rc == nil {
		return nil
	}
	pipe := c.rc.TxPipeline()
	pipe.Incr(ctx, generationKey)
	pipe.Del(ctx, productKey(id), listsKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate product %d: %w", id, err)
	}
	return nil
}

func (c *ProductCache) decode(raw []byte, err error, dest any, kind string) bool {
	switch {
	case errors.Is(err, redis.Nil):
		observability.RecordCacheLookup("miss")
		return false
	case err != nil:
		observability.RecordCacheLookup("error")
		c.logger.Warn("product cache read failed", zap.String("kind", kind), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		observability.RecordCacheLookup("error")
		c.logger.Warn("product cache entry unreadable", zap.String("kind", kind), zap.Error(err))
		return false
	}
	observability.RecordCacheLookup("hit")
	return true
}

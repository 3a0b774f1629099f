package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microshop/internal/core/cache"
	"microshop/internal/core/logger"
	"microshop/internal/features/catalog/domain"
	"microshop/internal/features/catalog/ports"

	"go.uber.org/zap"
)

const productListCacheKey = "products:all"

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// CachedProductRepository is a read-through cache in front of another
// ports.ProductRepository. Reads fill missing keys only; writes go to the
// store first and then write the fresh product and list through, so a read
// that raced a write cannot leave the older copy behind.
// Cache failures are logged and the store answers instead.
type CachedProductRepository struct {
	next  ports.ProductRepository
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedProductRepository wraps next with c.
func NewCachedProductRepository(next ports.ProductRepository, c cache.Cache, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   logger.Get(),
	}
}

// List returns the cached product list, loading it on a miss.
func (r *CachedProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if cached, err := cache.GetJSON[[]domain.Product](ctx, r.cache, productListCacheKey); err == nil {
		return *cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("Product list cache read failed", zap.Error(err))
	}

	products, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, productListCacheKey, products)
	return products, nil
}

// Get returns the cached product, loading it on a miss.
func (r *CachedProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	key := productCacheKey(id)

	if cached, err := cache.GetJSON[domain.Product](ctx, r.cache, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("Product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	}

	product, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, key, product)
	return product, nil
}

// Create stores the product and refreshes the list.
func (r *CachedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	r.refreshList(ctx)
	return nil
}

// Update stores the product and writes it and the list through.
func (r *CachedProductRepository) Update(ctx context.Context, id int64, product *domain.Product) (*domain.Product, error) {
	updated, err := r.next.Update(ctx, id, product)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productCacheKey(id), updated)
	r.refreshList(ctx)
	return updated, nil
}

// Delete removes the product, evicts it and refreshes the list.
func (r *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, productCacheKey(id))
	r.refreshList(ctx)
	return nil
}

func (r *CachedProductRepository) refreshList(ctx context.Context) {
	products, err := r.next.List(ctx)
	if err != nil {
		r.log.Warn("Product list reload failed", zap.Error(err))
		r.evict(ctx, productListCacheKey)
		return
	}
	r.store(ctx, productListCacheKey, products)
}

func (r *CachedProductRepository) fill(ctx context.Context, key string, v any) {
	if _, err := cache.AddJSON(ctx, r.cache, key, v, r.ttl); err != nil {
		r.log.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedProductRepository) store(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, r.cache, key, v, r.ttl); err != nil {
		r.log.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
		r.evict(ctx, key)
	}
}

func (r *CachedProductRepository) evict(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn("Product cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

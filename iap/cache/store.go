package cache

import (
	"context"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// Cache is a read-through iap.Store cache. Granted entitlements are never
// revoked by this package, so cached hits stay valid for the TTL. Misses are
// not cached.
type Cache struct {
	db    iap.Store
	ttl   time.Duration
	cache *ttlcache.Cache
}

func NewInCache(db iap.Store, ttl time.Duration) iap.Store {
	return &Cache{
		db:    db,
		ttl:   ttl,
		cache: newTTLCache(ttl),
	}
}

func newTTLCache(ttl time.Duration) *ttlcache.Cache {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)
	return cache
}

func (c *Cache) CreatePurchase(ctx context.Context, purchase *iap.Purchase) error {
	if err := c.db.CreatePurchase(ctx, purchase); err != nil {
		return err
	}

	c.cache.Set(purchase.EntitlementKey, purchase.Clone())
	return nil
}

func (c *Cache) GetPurchase(ctx context.Context, entitlementKey string) (*iap.Purchase, error) {
	cached, ok := c.cache.Get(entitlementKey)

	if !ok {
		purchase, err := c.db.GetPurchase(ctx, entitlementKey)
		if err != nil {
			return nil, err
		}

		c.cache.Set(entitlementKey, purchase.Clone())

		return purchase, nil
	}

	return cached.(*iap.Purchase).Clone(), nil
}

func (c *Cache) reset() {
	c.cache.Close()
	c.cache = newTTLCache(c.ttl)
}

// Close stops the cache's expiry goroutine.
func (c *Cache) Close() {
	c.cache.Close()
}

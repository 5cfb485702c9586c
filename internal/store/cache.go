package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/metrics"
)

const defaultCacheTTL = 300 * time.Second

// Cache is a bounded-staleness read-through cache. Entries expire after a
// fixed TTL and are never invalidated by writes, so cached reads are
// eventually consistent within that window. Read paths that feed
// authorization decisions must set FindOptions.DisableCache.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewCache(rdb *redis.Client, prefix string, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl, log: log}
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) bool {
	b, err := c.rdb.Get(ctx, c.prefix+":"+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debugw("cache get failed", "key", key, "error", err)
		}
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.log.Debugw("cache entry undecodable", "key", key, "error", err)
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("hit").Inc()
	return true
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+":"+key, b, c.ttl).Err(); err != nil {
		c.log.Debugw("cache set failed", "key", key, "error", err)
	}
}

// cacheKey hashes the criteria and read options so equivalent queries hit
// the same entry. encoding/json emits map keys sorted, which keeps the
// key stable across bson.M construction order.
func cacheKey(model string, criteria interface{}, opts FindOptions) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(criteria)
	_ = enc.Encode(struct {
		Sort       interface{}
		Projection interface{}
		Limit      int64
		Skip       int64
	}{opts.Sort, opts.Projection, opts.Limit, opts.Skip})
	return model + ":" + hex.EncodeToString(h.Sum(nil))
}

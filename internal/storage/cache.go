package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qms_record_cache_lookups_total",
	Help: "Record cache lookups by collection and result (hit, miss, error)",
}, []string{"collection", "result"})

const defaultCacheTTL = 5 * time.Minute

// storeIfNewer writes a cache entry unless the cached one carries the same
// or a later version. Versions are zero-padded so string order is numeric
// order; an empty version never replaces an existing entry.
var storeIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and cur >= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'b', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Cached puts a Redis read-through cache in front of a collection for
// lookups by id. Entries are hashes holding the body and its version, the
// record's updatedAt. Readers and writers both go through storeIfNewer, so
// a reader that loaded a record before a concurrent write can never put
// the older body back, and writers finishing out of order keep the newest.
// Records without updatedAt are evicted on write instead. Redis failures
// are logged and the inner collection answers.
type Cached[T Record] struct {
	inner      Collection[T]
	client     *redis.Client
	collection string
	ttl        time.Duration
	logger     *slog.Logger
}

// CachedOption configures a Cached collection.
type CachedOption func(*cachedConfig)

type cachedConfig struct {
	ttl    time.Duration
	logger *slog.Logger
}

// WithCacheTTL overrides the per-entry expiry.
func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *cachedConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *cachedConfig) {
		c.logger = logger
	}
}

// NewCached wraps inner. collection namespaces the Redis keys.
func NewCached[T Record](inner Collection[T], client *redis.Client, collection string, opts ...CachedOption) *Cached[T] {
	cfg := &cachedConfig{ttl: defaultCacheTTL}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Cached[T]{
		inner:      inner,
		client:     client,
		collection: collection,
		ttl:        cfg.ttl,
		logger:     cfg.logger,
	}
}

func (c *Cached[T]) key(id string) string {
	return "qms:record:" + c.collection + ":" + id
}

func (c *Cached[T]) Insert(ctx context.Context, record T) error {
	return c.inner.Insert(ctx, record)
}

func (c *Cached[T]) Update(ctx context.Context, record T) error {
	if err := c.inner.Update(ctx, record); err != nil {
		c.evict(ctx, record.RecordID())
		return err
	}
	c.written(ctx, record)
	return nil
}

func (c *Cached[T]) FindByID(ctx context.Context, id string) (T, error) {
	body, err := c.client.HGet(ctx, c.key(id), "b").Bytes()
	switch {
	case err == nil:
		if record, decErr := decode[T](body); decErr == nil {
			cacheLookups.WithLabelValues(c.collection, "hit").Inc()
			return record, nil
		}
		c.evict(ctx, id)
		cacheLookups.WithLabelValues(c.collection, "error").Inc()
	case errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues(c.collection, "miss").Inc()
	default:
		cacheLookups.WithLabelValues(c.collection, "error").Inc()
		c.warn(ctx, "record cache read failed", id, err)
	}

	record, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return record, err
	}
	c.store(ctx, record)
	return record, nil
}

func (c *Cached[T]) FindMany(ctx context.Context, ids []string) ([]T, error) {
	return c.inner.FindMany(ctx, ids)
}

func (c *Cached[T]) List(ctx context.Context) ([]T, error) {
	return c.inner.List(ctx)
}

func (c *Cached[T]) Execute(ctx context.Context, id string, fn func(T) error) (T, error) {
	record, err := c.inner.Execute(ctx, id, fn)
	if err != nil {
		return record, err
	}
	c.written(ctx, record)
	return record, nil
}

// written refreshes the cache after a committed write. When the new body
// cannot be stored the entry is dropped so no older copy survives.
func (c *Cached[T]) written(ctx context.Context, record T) {
	body, err := encode(record)
	if err != nil || version(body) == "" {
		c.evict(ctx, record.RecordID())
		return
	}
	if !c.put(ctx, record.RecordID(), body) {
		c.evict(ctx, record.RecordID())
	}
}

// store caches a body read from the inner collection.
func (c *Cached[T]) store(ctx context.Context, record T) {
	body, err := encode(record)
	if err != nil {
		return
	}
	c.put(ctx, record.RecordID(), body)
}

func (c *Cached[T]) put(ctx context.Context, id string, body []byte) bool {
	err := storeIfNewer.Run(ctx, c.client, []string{c.key(id)}, version(body), body, c.ttl.Milliseconds()).Err()
	if err != nil {
		c.warn(ctx, "record cache write failed", id, err)
		return false
	}
	return true
}

// version is the record's updatedAt in nanoseconds, padded to a fixed
// width, or "" when the record has none.
func version(body []byte) string {
	var v struct {
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.UpdatedAt.IsZero() {
		return ""
	}
	return fmt.Sprintf("%020d", v.UpdatedAt.UnixNano())
}

func (c *Cached[T]) evict(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.warn(ctx, "record cache evict failed", id, err)
	}
}

func (c *Cached[T]) warn(ctx context.Context, msg, id string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg,
		"collection", c.collection,
		"id", id,
		"error", err,
	)
}

package currency

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rates maps a currency code to its rate against a base currency.
type Rates map[string]float64

// RateCache stores rate tables keyed by base currency. Implementations must
// be safe for concurrent use.
type RateCache interface {
	// Get returns the cached rates for base, if present and fresh.
	Get(ctx context.Context, base string) (Rates, bool)

	// Put stores rates for base.
	Put(ctx context.Context, base string, rates Rates) error

	// Close releases any connection held by the cache.
	Close() error
}

// CacheStats holds cache counters.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Items     int
}

// MemoryCache is an LRU rate cache with a per-entry TTL.
type MemoryCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats CacheStats
}

type memoryCacheEntry struct {
	base    string
	rates   Rates
	expires time.Time
}

// NewMemoryCache creates a cache holding at most capacity rate tables, each
// valid for ttl.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 32
	}
	return &MemoryCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

// Get implements RateCache.
func (c *MemoryCache) Get(_ context.Context, base string) (Rates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[base]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	entry := elem.Value.(*memoryCacheEntry)
	if c.now().After(entry.expires) {
		c.removeElement(elem)
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return entry.rates, true
}

// Put implements RateCache.
func (c *MemoryCache) Put(_ context.Context, base string, rates Rates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)

	if elem, ok := c.items[base]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryCacheEntry)
		entry.rates = rates
		entry.expires = expires
		return nil
	}

	for c.eviction.Len() >= c.capacity {
		c.removeElement(c.eviction.Back())
		c.stats.Evictions++
	}

	c.items[base] = c.eviction.PushFront(&memoryCacheEntry{
		base:    base,
		rates:   rates,
		expires: expires,
	})
	return nil
}

// Close implements RateCache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Items = c.eviction.Len()
	return s
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	entry := c.eviction.Remove(elem).(*memoryCacheEntry)
	delete(c.items, entry.base)
}

// RedisCache shares rate tables between processes through Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisConfig holds connection settings for RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "convertpro:rates:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.Prefix,
	}, nil
}

// Get implements RateCache.
func (r *RedisCache) Get(ctx context.Context, base string) (Rates, bool) {
	val, err := r.client.Get(ctx, r.key(base)).Result()
	if err != nil {
		return nil, false
	}

	var rates Rates
	if err := json.Unmarshal([]byte(val), &rates); err != nil {
		return nil, false
	}
	return rates, true
}

// Put implements RateCache.
func (r *RedisCache) Put(ctx context.Context, base string, rates Rates) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	if err := r.client.Set(ctx, r.key(base), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rates: %w", err)
	}
	return nil
}

// Close implements RateCache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) key(base string) string {
	return r.prefix + strings.ToUpper(base)
}

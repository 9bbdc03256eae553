package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache for query responses. A response is safe
// to cache indefinitely relative to its own catalog generation — the
// catalog never mutates after construction — so implementations only
// need a TTL for memory hygiene, never an invalidation path.
type Cache interface {
	GetBus(name string) (BusResponse, bool)
	SetBus(name string, resp BusResponse)
	GetStop(name string) (StopResponse, bool)
	SetStop(name string, resp StopResponse)
	GetRoute(from, to string) (RouteResponse, bool)
	SetRoute(from, to string, resp RouteResponse)
}

// RedisCache is a Cache backed by a Redis server. Keys are namespaced by
// generation so that restarting with a different ingested catalog never
// serves a stale answer from a previous run.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	generation string
}

// NewRedisCache wraps an existing client. generation should change
// whenever the catalog is rebuilt from different input (the ingest run's
// id is a natural choice — see internal/storage).
func NewRedisCache(client *redis.Client, ttl time.Duration, generation string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, generation: generation}
}

func (c *RedisCache) busKey(name string) string   { return fmt.Sprintf("%s:bus:%s", c.generation, name) }
func (c *RedisCache) stopKey(name string) string  { return fmt.Sprintf("%s:stop:%s", c.generation, name) }
func (c *RedisCache) routeKey(from, to string) string {
	return fmt.Sprintf("%s:route:%s:%s", c.generation, from, to)
}

func (c *RedisCache) GetBus(name string) (BusResponse, bool) {
	var resp BusResponse
	ok := c.get(c.busKey(name), &resp)
	return resp, ok
}

func (c *RedisCache) SetBus(name string, resp BusResponse) {
	c.set(c.busKey(name), resp)
}

func (c *RedisCache) GetStop(name string) (StopResponse, bool) {
	var resp StopResponse
	ok := c.get(c.stopKey(name), &resp)
	return resp, ok
}

func (c *RedisCache) SetStop(name string, resp StopResponse) {
	c.set(c.stopKey(name), resp)
}

func (c *RedisCache) GetRoute(from, to string) (RouteResponse, bool) {
	var resp RouteResponse
	ok := c.get(c.routeKey(from, to), &resp)
	return resp, ok
}

func (c *RedisCache) SetRoute(from, to string, resp RouteResponse) {
	c.set(c.routeKey(from, to), resp)
}

func (c *RedisCache) get(key string, dst any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *RedisCache) set(key string, src any) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(src)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

package provider

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// clientCache holds SDK clients keyed by credential so concurrent calls that
// share a key share one client.
type clientCache[T any] struct {
	cache *ristretto.Cache
	mu    sync.Mutex
	build func(key string) (T, error)
}

func newClientCache[T any](build func(key string) (T, error)) (*clientCache[T], error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        1000,
		MaxCost:            64,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create client cache: %w", err)
	}
	return &clientCache[T]{cache: c, build: build}, nil
}

func (c *clientCache[T]) get(key string) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(key); ok {
		return v.(T), nil
	}

	client, err := c.build(key)
	if err != nil {
		var zero T
		return zero, err
	}
	c.cache.Set(key, client, 1)
	c.cache.Wait()
	return client, nil
}

func (c *clientCache[T]) close() {
	c.cache.Close()
}

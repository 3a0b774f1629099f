package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the port for the read-through caches in front of the catalog and
// the public tracking endpoint.
type Cache interface {
	// Get returns the cached value, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Add stores a value only when key is absent and reports whether it did.
	// Read-through fills use it so they never replace a newer write.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// Noop is the Cache used when no Redis URL is configured. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)                      { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error         { return nil }
func (Noop) Add(context.Context, string, []byte, time.Duration) (bool, error) { return false, nil }
func (Noop) Delete(context.Context, ...string) error                          { return nil }
func (Noop) Ping(context.Context) error                                       { return nil }
func (Noop) Close() error                                                     { return nil }

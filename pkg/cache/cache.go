// Package cache stores opaque byte payloads with an optional time-to-live.
//
// The database syncer uses it to keep downloaded archives between runs so
// that regenerating an overlay does not hit the network every time.
// [FileCache] persists entries under a directory (by default
// $XDG_CACHE_HOME/overlaysmith); [NullCache] disables caching.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the payload stored under key. A miss, including an
	// expired entry, is reported as ok == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Key joins a namespace and its parts into a cache key:
//
//	Key("db", uri) == "db:" + uri
func Key(namespace string, parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}

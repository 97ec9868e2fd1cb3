package cache

import "time"

// Cache is the small surface the service needs for derived-value caching.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration) error
	Del(key string) error
}

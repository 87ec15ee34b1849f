package cache

import "time"

// BytesCache stores opaque byte payloads under string keys with a TTL.
// Both the in-process and the Redis implementation satisfy it, so the
// plan usecase stays agnostic of which one the config selected.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

package cache

import "errors"

// ErrCacheMiss is returned when a key is not found in the cache.
// Callers should treat this as a signal to load from the source of truth,
// not as a failure.
var ErrCacheMiss = errors.New("cache miss")

package cache

import "fmt"

// Key prefixes for different cache domains. Consistent prefixes make keys
// self-describing in Redis tooling.
const (
	prefixSession = "session"
)

// SessionKey returns the cache key for a resolved session, keyed by the
// opaque session token.
//
// Format: session:{token}
func SessionKey(token string) string {
	return fmt.Sprintf("%s:%s", prefixSession, token)
}

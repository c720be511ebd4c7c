package util

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// sessionCache keeps a token -> actor fast path so every authenticated
// request does not hit the sessions table. Entries carry the remaining
// session TTL and are purged on logout.
var sessionCache = cache.New(5*time.Minute, 10*time.Minute)

// SessionCacheSet caches the actor behind a session token for ttl.
func SessionCacheSet(token, actor string, ttl time.Duration) {
	if token == "" || ttl <= 0 {
		return
	}
	sessionCache.Set(token, actor, ttl)
}

// SessionCacheGet returns the cached actor and true if the token is present.
func SessionCacheGet(token string) (string, bool) {
	v, ok := sessionCache.Get(token)
	if !ok {
		return "", false
	}
	actor, ok := v.(string)
	return actor, ok
}

// SessionCacheDelete removes a token from the cache (logout).
func SessionCacheDelete(token string) {
	sessionCache.Delete(token)
}

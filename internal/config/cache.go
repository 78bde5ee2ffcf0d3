package config

import "time"

// CacheConfig controls the Redis response cache in front of the public
// browse endpoints.  Event and section listings change on admin writes
// only, so a short TTL takes the read load off MySQL during an on-sale
// rush without staleness anyone would notice.  The live seat map and
// the SSE streams are never cached.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string // Redis key namespace
    MaxBodyBytes int    // responses larger than this are not stored
}

// LoadCacheConfig reads the cache settings from the environment, with a
// 30 second TTL and a 1 MiB body cap by default.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

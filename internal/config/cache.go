package config

import (
	"time"
)

// CacheConfig defines settings for the tour listing cache.  When Enabled is
// false every read goes straight to the database.  TTL is the fixed
// lifetime of each entry and Prefix namespaces keys in a shared Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 10*time.Minute),
		Prefix:  envStr("CACHE_PREFIX", "tourbook"),
	}
}

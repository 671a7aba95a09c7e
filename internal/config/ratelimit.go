package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig configures the token bucket applied to /v1.  Capacity is
// the bucket size and RefillTokens are added every RefillInterval.  When
// Redis is unavailable the same numbers drive an in-process limiter.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip | user | ip_user | ip_user_route
	Prefix         string
}

func LoadRateLimitConfig() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	rl.normalize()
	return rl
}

func (rl *RateLimitConfig) normalize() {
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// keys must outlive a full refill cycle
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}

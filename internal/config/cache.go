package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig controls the per-account response cache.  The cache is off
// when Enabled is false or no Redis client could be created.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Methods      []string      `env:"CACHE_METHODS" envSeparator:"," envDefault:"GET"` // cacheable HTTP methods
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`                      // upper bound on a stale read
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`                 // key namespace
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`       // larger responses are not stored
}

// Caches reports whether responses to method are cacheable.
func (c CacheConfig) Caches(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}

// ParseCacheConfig reads the CACHE_* variables.
func ParseCacheConfig() (CacheConfig, error) {
	var c CacheConfig
	if err := env.Parse(&c); err != nil {
		return CacheConfig{}, fmt.Errorf("parse cache env: %w", err)
	}
	if c.TTL <= 0 {
		return CacheConfig{}, fmt.Errorf("CACHE_TTL must be positive, got %s", c.TTL)
	}
	return c, nil
}

// LoadCacheConfig is ParseCacheConfig that treats a bad value as fatal, the
// same way Load does.
func LoadCacheConfig() CacheConfig {
	c, err := ParseCacheConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

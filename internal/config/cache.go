package config

import (
	"fmt"
	"time"
)

const defaultCacheTTL = 10 * time.Second

type CacheConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

func (cfg *CacheConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("cache url cannot be empty")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	return nil
}

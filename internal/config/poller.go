package config

import (
	"errors"
	"time"
)

const (
	defaultPollInterval          = time.Second
	defaultMinCollectionInterval = 12 * time.Second
	defaultMaxWalkSteps          = 10000
)

type PollerConfig struct {
	PollInterval          time.Duration `mapstructure:"poll-interval"`
	MinCollectionInterval time.Duration `mapstructure:"min-collection-interval"`
	// MaxWalkSteps bounds the parent-hash walk of a single real-time poll
	MaxWalkSteps int `mapstructure:"max-walk-steps"`
}

func DefaultPollerConfig() *PollerConfig {
	return &PollerConfig{
		PollInterval:          defaultPollInterval,
		MinCollectionInterval: defaultMinCollectionInterval,
		MaxWalkSteps:          defaultMaxWalkSteps,
	}
}

func (cfg *PollerConfig) Validate() error {
	if cfg.PollInterval <= 0 {
		return errors.New("poll-interval must be positive")
	}

	if cfg.MinCollectionInterval < 0 {
		return errors.New("min-collection-interval must not be negative")
	}

	if cfg.MaxWalkSteps <= 0 {
		cfg.MaxWalkSteps = defaultMaxWalkSteps
	}

	return nil
}

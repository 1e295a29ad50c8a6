package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ParsePolicySkip = "skip"
	ParsePolicyFail = "fail"

	defaultHourlyMinBlocks = 200
	defaultDailyMinHours   = 24
	defaultStoreBatchSize  = 100
	defaultStatsLookback   = 7 * 24 * time.Hour
)

type AggregatorConfig struct {
	// HourlyMinBlocks is the completeness gate of an hour bucket
	HourlyMinBlocks int           `mapstructure:"hourly-min-blocks"`
	// DailyMinHours is the completeness gate of a day bucket
	DailyMinHours   int           `mapstructure:"daily-min-hours"`
	StoreBatchSize  int           `mapstructure:"store-batch-size"`
	StatsLookback   time.Duration `mapstructure:"stats-lookback"`
	ParsePolicy     string        `mapstructure:"parse-policy"`
}

func DefaultAggregatorConfig() *AggregatorConfig {
	return &AggregatorConfig{
		HourlyMinBlocks: defaultHourlyMinBlocks,
		DailyMinHours:   defaultDailyMinHours,
		StoreBatchSize:  defaultStoreBatchSize,
		StatsLookback:   defaultStatsLookback,
		ParsePolicy:     ParsePolicySkip,
	}
}

func (cfg *AggregatorConfig) Validate() error {
	if cfg.HourlyMinBlocks <= 0 {
		return errors.New("hourly-min-blocks must be positive")
	}

	if cfg.DailyMinHours <= 0 {
		return errors.New("daily-min-hours must be positive")
	}

	if cfg.StoreBatchSize <= 0 {
		cfg.StoreBatchSize = defaultStoreBatchSize
	}

	if cfg.StatsLookback <= 0 {
		cfg.StatsLookback = defaultStatsLookback
	}

	switch cfg.ParsePolicy {
	case "":
		cfg.ParsePolicy = ParsePolicySkip
	case ParsePolicySkip, ParsePolicyFail:
	default:
		return fmt.Errorf("parse-policy must be %q or %q", ParsePolicySkip, ParsePolicyFail)
	}

	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel   string           `mapstructure:"log-level"`
	LogFormat  string           `mapstructure:"log-format"`
	Db         DbConfig         `mapstructure:"db"`
	Eth        EthConfig        `mapstructure:"eth"`
	Poller     PollerConfig     `mapstructure:"poller"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Cache      *CacheConfig     `mapstructure:"cache"`
	Queue      *QueueConfig     `mapstructure:"queue"`
	Tracing    *TracingConfig   `mapstructure:"tracing"`
}

// DefaultConfig returns a configuration usable against a local mongo and a
// public mainnet RPC endpoint.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   zerolog.InfoLevel.String(),
		LogFormat:  "json",
		Db:         *DefaultDbConfig(),
		Eth:        *DefaultEthConfig(),
		Poller:     *DefaultPollerConfig(),
		Aggregator: *DefaultAggregatorConfig(),
		Server:     *DefaultServerConfig(),
		Metrics:    *DefaultMetricsConfig(),
	}
}

// New loads the yaml config at cfgFile. Environment variables override file
// values, nested keys are joined with "__" (DB__ADDRESS, ETH__RPC-URL...).
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log-format must be json or console")
	}

	if err := cfg.Db.Validate(); err != nil {
		return err
	}

	if err := cfg.Eth.Validate(); err != nil {
		return err
	}

	if err := cfg.Poller.Validate(); err != nil {
		return err
	}

	if err := cfg.Aggregator.Validate(); err != nil {
		return err
	}

	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	// cache, queue and tracing are optional
	if cfg.Cache != nil {
		if err := cfg.Cache.Validate(); err != nil {
			return err
		}
	}

	if cfg.Queue != nil {
		if err := cfg.Queue.Validate(); err != nil {
			return err
		}
	}

	if cfg.Tracing != nil {
		if err := cfg.Tracing.Validate(); err != nil {
			return err
		}
	}

	return nil
}

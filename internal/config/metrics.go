package config

import "fmt"

type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Host: "0.0.0.0",
		Port: 2112,
	}
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("metrics server port must be between 0 and 65535 (inclusive)")
	}

	return nil
}

func (cfg *MetricsConfig) GetMetricsPort() int {
	return cfg.Port
}

package config

import "fmt"

const defaultServiceName = "ethdemo-indexer"

type TracingConfig struct {
	OTLPEndpoint string `mapstructure:"otlp-endpoint"`
	ServiceName  string `mapstructure:"service-name"`
}

func (cfg *TracingConfig) Validate() error {
	if cfg.OTLPEndpoint == "" {
		return fmt.Errorf("tracing otlp-endpoint cannot be empty")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	return nil
}

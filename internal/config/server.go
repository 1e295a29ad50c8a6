package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed-origins"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle-timeout"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "0.0.0.0",
		Port:           3001,
		AllowedOrigins: []string{"*"},
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   120 * time.Second,
		IdleTimeout:    120 * time.Second,
	}
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return fmt.Errorf("server read/write timeouts must be positive")
	}

	return nil
}

func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

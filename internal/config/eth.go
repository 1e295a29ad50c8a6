package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// GLM (Golem) token on Ethereum mainnet
	DefaultGLMTokenAddress = "0x7DD9c5Cba05E151C895FDe1CF355C9A1D5DA6429"

	defaultEthRPCURL     = "https://ethereum-rpc.publicnode.com"
	defaultEthTimeout    = 20 * time.Second
	defaultMaxRetryTimes = 3
	defaultRetryInterval = time.Second
)

// EthConfig defines configuration for the Ethereum JSON-RPC client
type EthConfig struct {
	RPCURL          string        `mapstructure:"rpc-url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetryTimes   uint          `mapstructure:"max-retry-times"`
	RetryInterval   time.Duration `mapstructure:"retry-interval"`
	GLMTokenAddress string        `mapstructure:"glm-token-address"`
}

func DefaultEthConfig() *EthConfig {
	return &EthConfig{
		RPCURL:          defaultEthRPCURL,
		Timeout:         defaultEthTimeout,
		MaxRetryTimes:   defaultMaxRetryTimes,
		RetryInterval:   defaultRetryInterval,
		GLMTokenAddress: DefaultGLMTokenAddress,
	}
}

func (cfg *EthConfig) Validate() error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("eth rpc-url cannot be empty")
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("eth timeout should be positive")
	}

	if cfg.MaxRetryTimes <= 0 {
		return fmt.Errorf("eth max retry times should be positive")
	}

	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("eth retry interval should be positive")
	}

	if !common.IsHexAddress(cfg.GLMTokenAddress) {
		return fmt.Errorf("invalid glm-token-address %q", cfg.GLMTokenAddress)
	}

	return nil
}

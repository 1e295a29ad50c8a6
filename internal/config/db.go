package config

import (
	"fmt"
	"strings"
)

const (
	DbTypeMongo  = "mongo"
	DbTypeMemory = "memory"

	defaultDbName         = "ethdemo"
	defaultQueryPageLimit = 1000
)

type DbConfig struct {
	Type     string `mapstructure:"type"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"db-name"`
	Address  string `mapstructure:"address"`
	// Owner is recorded on every created entity and used by ownedBy queries
	Owner          string `mapstructure:"owner"`
	QueryPageLimit int64  `mapstructure:"query-page-limit"`
}

func DefaultDbConfig() *DbConfig {
	return &DbConfig{
		Type:           DbTypeMongo,
		DbName:         defaultDbName,
		Address:        "mongodb://localhost:27017",
		QueryPageLimit: defaultQueryPageLimit,
	}
}

func (cfg *DbConfig) Validate() error {
	switch cfg.Type {
	case DbTypeMemory:
	case DbTypeMongo:
		if cfg.Address == "" {
			return fmt.Errorf("db address cannot be empty")
		}
		if !strings.HasPrefix(cfg.Address, "mongodb://") && !strings.HasPrefix(cfg.Address, "mongodb+srv://") {
			return fmt.Errorf("db address must be a mongodb connection string")
		}
		if cfg.DbName == "" {
			return fmt.Errorf("db name cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported db type %q", cfg.Type)
	}

	if cfg.QueryPageLimit <= 0 {
		return fmt.Errorf("query-page-limit must be positive")
	}

	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Arkiv-Network/inf-demo/pkg"
)

const (
	defaultConfigFileName = "config.yml"
	configPathEnv         = "ETHDEMO_CONFIG"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:           "ethdemo-indexer",
		Short:         "Indexes Ethereum blocks, gas prices and GLM transfers into the entity store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := pkg.Getenv(configPathEnv, getDefaultConfigFile(homePath, defaultConfigFileName))

	rootCmd.AddCommand(FeedCmd())
	rootCmd.AddCommand(CleanCmd())
	rootCmd.AddCommand(StartServerCmd())
	rootCmd.AddCommand(GetStatsCmd())
	rootCmd.AddCommand(CompareGasPricesCmd())
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

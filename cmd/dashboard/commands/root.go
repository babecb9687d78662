package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Stock dashboard with price history, quotes and forecasts",
	Long: `Stock Dashboard CLI

Serves the dashboard API and inspects the stock data source from the
terminal. The data source is either the stock HTTP API or a Postgres
database, optionally fronted by a Redis cache.

Usage:
  go run ./cmd/dashboard [command]

Examples:
  go run ./cmd/dashboard serve
  go run ./cmd/dashboard companies
  go run ./cmd/dashboard select AAPL
  go run ./cmd/dashboard status`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	return cfg, nil
}

// cliLogger keeps one-shot commands quiet: warnings only, console format,
// unless --verbose is set
func cliLogger(cfg *config.Config) *logger.Logger {
	quiet := *cfg
	quiet.LogFormat = "console"
	if verbose {
		quiet.LogLevel = "debug"
	} else {
		quiet.LogLevel = "warn"
	}
	return logger.New(&quiet)
}

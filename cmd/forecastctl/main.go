package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/DaDevFox/task-systems/forecast-core/internal/config"
	"github.com/DaDevFox/task-systems/forecast-core/internal/logging"
)

var (
	configPath string
	dbType     string
	dbPath     string
	dbURL      string
	logLevel   string
	jsonOutput bool

	cfg    *config.Config
	logger *logrus.Logger
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forecastctl",
		Short: "Pharmacy demand forecasting and restock planning",
		Long:  "Imports pharmacy sales history and computes ARIMA demand forecasts and restock recommendations against a local database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize(cmd)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "Database type: bolt, badger or postgres (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "Database path for bolt/badger (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "Postgres connection URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newForecastCommand())
	rootCmd.AddCommand(newRestockCommand())

	return rootCmd
}

func initialize(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	if cmd.Flags().Changed("db-type") {
		loaded.Database.Type = dbType
	}
	if cmd.Flags().Changed("db-path") {
		loaded.Database.Path = dbPath
	}
	if cmd.Flags().Changed("db-url") {
		loaded.Database.URL = dbURL
	}
	if err := loaded.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	cfg = loaded
	logger = logging.NewWithOutput(os.Stderr, logLevel, "text")
	return nil
}

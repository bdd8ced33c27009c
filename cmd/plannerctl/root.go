package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Dan9191/market-planner/internal/config"
	"github.com/Dan9191/market-planner/internal/integrations/backend"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagBackendURL string
	flagToken      string
	flagCurrency   string
	flagJSON       bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "plannerctl",
	Short:        "Debt payment planner CLI",
	Long:         "Plan supplier debt payments against the shop cash balance, straight from the bookkeeping backend.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend-url", "", "Bookkeeping API base URL (default $BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bookkeeping API token (default $BACKEND_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Base currency (default $BASE_CURRENCY)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log backend requests to stderr")
}

// loadClient resolves configuration from the environment, applies flag
// overrides and builds the backend client shared by all commands.
func loadClient() (*config.Config, *backend.Client, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	if flagBackendURL != "" {
		cfg.BackendURL = flagBackendURL
	}
	if flagToken != "" {
		cfg.BackendToken = flagToken
	}
	if flagCurrency != "" {
		cfg.BaseCurrency = strings.ToUpper(flagCurrency)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	client, err := backend.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return cfg, client, nil
}

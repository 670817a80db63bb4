package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront order-processing backend with PayPal checkout",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file, environment variables take precedence")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(productsCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the JSON logger as the default.
func setup(configPath string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("config.Load: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return cfg, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

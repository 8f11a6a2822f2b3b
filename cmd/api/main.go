package main

import (
	"fmt"
	"log/slog"
	"os"

	"cardvault/internal/platform/config"
	"cardvault/internal/platform/logging"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cardvault",
		Short:         "Users and payment cards API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (CARDVAULT_* env vars override it)")

	load := func() (config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		return cfg, logging.New(cfg.Logging, os.Stderr), nil
	}

	root.AddCommand(serveCmd(load))
	root.AddCommand(migrateCmd(load))
	root.AddCommand(cacheCmd(load))
	root.AddCommand(tokenCmd(load))
	return root
}

type loader func() (config.Config, *slog.Logger, error)

package main

import (
	"cardvault/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func cacheCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached user, card and card list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			backend, err := bootstrap.OpenCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.Flush(cmd.Context()); err != nil {
				return err
			}
			logger.Info("cache flushed",
				"event", "cache_flushed",
				"module", "cmd/api",
				"layer", "platform",
				"cache_backend", cfg.Cache.Backend,
			)
			return nil
		},
	})
	return cmd
}

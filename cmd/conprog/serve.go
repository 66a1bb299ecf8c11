package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "conprog/internal/log"
	"conprog/internal/web"
)

func newServeCommand(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalized schedule, refreshing on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, pipeline, err := setup(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := &web.Store{}

			// Initial refresh. A failure here is not fatal: the server comes
			// up and answers 503 until a refresh succeeds.
			if ds, err := pipeline.Refresh(ctx); err != nil {
				appLog.Error("initial refresh failed", err)
			} else {
				store.Replace(ds)
			}

			c := cron.New()
			if _, err := c.AddFunc(cfg.RefreshCron, func() {
				ds, err := pipeline.Refresh(context.Background())
				if err != nil {
					appLog.Error("scheduled refresh failed", err)
					return
				}
				store.Replace(ds)
			}); err != nil {
				return err
			}
			c.Start()
			defer c.Stop()

			appLog.Info("refresh scheduled", "cron", cfg.RefreshCron)
			return web.Serve(ctx, cfg, store, pipeline.Refresh)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")

	return cmd
}

package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "conprog/internal/log"
)

func newRefreshCommand(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one fetch+normalize cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, times, pipeline, err := setup(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ds, err := pipeline.Refresh(ctx)
			if err != nil {
				return err
			}

			appLog.Info("refresh complete",
				"dataset", ds.ID,
				"items", len(ds.Items),
				"people", len(ds.People),
				"locations", len(ds.Locations),
				"during_convention", times.IsDuringConvention(ds.Items),
				"time_zones_differ", times.TimeZonesDiffer(ds.Items),
			)

			if out != "" {
				data, err := json.MarshalIndent(ds, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return err
				}
				appLog.Info("dataset written", "path", out, "bytes", len(data))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the normalized dataset as JSON to this path")

	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"conprog/internal/config"
	"conprog/internal/localtime"
	appLog "conprog/internal/log"
	"conprog/internal/program"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "conprog",
		Short:         "Convention program ingestion and serving",
		Long:          "conprog ingests program and people feeds, normalizes them into one cross-referenced schedule, and serves the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "/etc/conprog/config.yaml", "Path to config file")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newRefreshCommand(&configPath))

	return cmd
}

// setup loads config and wires the shared pipeline pieces.
func setup(configPath string) (*config.Config, *localtime.Service, *program.Pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	zone, err := cfg.ConventionZone()
	if err != nil {
		return nil, nil, nil, err
	}

	times := localtime.New(zone, cfg.TimezoneCode, nil)
	pipeline := program.NewPipeline(cfg, times)
	return cfg, times, pipeline, nil
}

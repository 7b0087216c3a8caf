package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
	"github.com/orgodyssey/odyssey/pkg/logger"
)

// app is filled in by the root command before any subcommand runs.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "odyssey",
		Short:        "Organizational Odyssey employer hierarchy service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				Service: "odyssey",
				Caller:  cfg.IsDevelopment(),
			})
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newGrantAdminCmd(a),
	)
	return root
}

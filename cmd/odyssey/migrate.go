package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
	"github.com/orgodyssey/odyssey/migrations"
)

var migrateActions = []string{"up", "down", "drop", "version"}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|drop|version]",
		Short:     "Apply the embedded Postgres migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateActions,
		RunE: func(_ *cobra.Command, args []string) error {
			if a.cfg.StoreDriver != config.DriverPostgres {
				a.log.Info().Str("driver", a.cfg.StoreDriver).Msg("nothing to migrate; indexes are created on start")
				return nil
			}

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			m, err := migrations.New(a.cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := migrations.Run(m, action)
			if err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}
			a.log.Info().Str("action", action).Uint("version", version).Bool("dirty", dirty).Msg("migration completed")
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orgodyssey/odyssey/internal/core/service"
	"github.com/orgodyssey/odyssey/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Import employers and relations from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fixture, err := seed.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			ctx := cmd.Context()
			store, err := openBackend(ctx, a)
			if err != nil {
				return err
			}
			defer store.close()

			employers := service.NewEmployerService(store.employers, store.relations, store.tx, a.log)
			report, err := seed.NewImporter(employers, store.tx, a.log).Import(ctx, fixture)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "employers: %d created, %d skipped\nrelations: %d created, %d skipped\n",
				report.EmployersCreated, report.EmployersSkipped, report.RelationsCreated, report.RelationsSkipped)
			return nil
		},
	}
}

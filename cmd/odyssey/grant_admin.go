package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/service"
)

// operator stands in for the admin actor when the flag is set from a shell.
var operator = &domain.User{Email: "operator@localhost", Admin: true, EmailConfirmed: true}

func newGrantAdminCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give an existing account the admin flag",
		Long:  "Promotes an account without an existing admin. Use it to bootstrap the first admin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openBackend(ctx, a)
			if err != nil {
				return err
			}
			defer store.close()

			admins := service.NewAdminService(store.users, store.employers, store.relations, store.tx, a.log)
			if err := admins.GrantAdmin(ctx, operator, args[0]); err != nil {
				return fmt.Errorf("grant admin to %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
			return nil
		},
	}
}

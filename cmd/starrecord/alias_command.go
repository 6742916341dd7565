package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"starrecord/internal/identity"
)

func newAliasCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "alias <player> <alt-name>",
		Short: "Register an alternate name for a known player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			ident, err := mgr.Resolver().ResolveSlotIdentity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := mgr.Resolver().RegisterAlias(cmd.Context(), ident, args[1]); err != nil {
				var conflict *identity.AliasConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("%s already belongs to another player", args[1])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alias registered: %s -> %s\n", args[1], ident.Name)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <folder>",
		Short: "Import every replay file under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mgr, err := ctx.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			count, err := mgr.ImportFolder(cmd.Context(), args[0], cfg.ImportParallelism)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new replays.\n", count)

			if cfg.AutoDetectSelf {
				detected, err := mgr.DetectSelf(cmd.Context())
				if err != nil {
					return err
				}
				if detected != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Local user inferred: %s\n", detected.Name)
					if cfg.AddMyName(detected.Name) {
						if err := ctx.saveConfig(); err != nil {
							return err
						}
					}
				}
			}
			return nil
		},
	}
}

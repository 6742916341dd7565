package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSetNameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-name <name>",
		Short: "Register your own in-game name",
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

			name := args[0]
			if err := mgr.SetSelf(cmd.Context(), name); err != nil {
				return err
			}
			if cfg.AddMyName(name) {
				if err := ctx.saveConfig(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered local user name: %s\n", name)
			return nil
		},
	}
}

func newSetReplayDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-replay-dir <path>",
		Short: "Set the replay folder to watch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := args[0]
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("folder does not exist: %s", dir)
			}
			cfg.ReplayDir = dir
			if err := ctx.saveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replay folder set: %s\n", dir)
			return nil
		},
	}
}

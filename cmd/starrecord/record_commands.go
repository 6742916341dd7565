package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"starrecord/internal/records"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "record <opponent>",
		Short: "Show the head-to-head record against one opponent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			// Aliases resolve to the canonical name before querying.
			opponent := args[0]
			if ident, err := mgr.Resolver().ResolveSlotIdentity(cmd.Context(), opponent); err == nil {
				opponent = ident.Name
			}

			selfNames, err := mgr.SelfNames(cmd.Context())
			if err != nil {
				return err
			}
			record, err := mgr.Reader().RecordVs(cmd.Context(), opponent, selfNames)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), records.FormatHeadToHead(record, 5))
			return nil
		},
	}
}

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Summarize the record against every opponent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			selfNames, err := mgr.SelfNames(cmd.Context())
			if err != nil {
				return err
			}
			if len(selfNames) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No local user registered; run set-name or import replays first.")
				return nil
			}

			summaries, err := mgr.Reader().Opponents(cmd.Context(), selfNames)
			if err != nil {
				return err
			}
			records.WriteSummaries(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"starrecord/internal/identity"
	"starrecord/internal/ipc"
	"starrecord/internal/match"
	"starrecord/internal/replay"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "parse <replay>",
		Short: "Decode one replay file and print the match record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := args[0]
			key := filepath.Base(path)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			var output *ipc.Output
			if jsonOut {
				output = ipc.NewOutput()
			}

			res, err := replay.Decode(data, key)
			if err != nil {
				if output != nil {
					output.Error(fmt.Sprintf("decode %s: %v", key, err))
				}
				return fmt.Errorf("decode %s: %w", key, err)
			}
			if res.CommandDiag != nil && output != nil {
				output.Log("warn", fmt.Sprintf("section %s unusable, header-only record", res.CommandDiag.Section))
			}
			if res.StreamDiag != nil && output != nil {
				output.Log("warn", res.StreamDiag.Error())
			}

			// Standalone parse never touches the database; names resolve
			// against a throwaway store, with configured self names
			// marked so my_result still comes out.
			store := identity.NewMemoryStore()
			resolver := identity.NewResolver(store)
			identities := make(map[int]*identity.Identity, len(res.Header.Slots))
			for _, slot := range res.Header.Slots {
				if slot.Name == "" {
					continue
				}
				ident, err := resolver.ResolveSlotIdentity(cmd.Context(), slot.Name)
				if err != nil {
					return err
				}
				identities[slot.Index] = ident
			}
			for _, name := range cfg.MyNames {
				store.MarkSelf(name)
			}
			for slot, ident := range identities {
				refreshed, err := store.LookupByName(cmd.Context(), ident.Name)
				if err == nil && refreshed != nil {
					identities[slot] = refreshed
				}
			}

			rec := match.Assemble(res, identities, res.Header.CreatedAt)

			if output != nil {
				output.Record(rec)
				return nil
			}
			printRecord(cmd, rec, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit NDJSON instead of human-readable output")
	return cmd
}

func printRecord(cmd *cobra.Command, rec match.Record, res *replay.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replay:   %s\n", rec.ReplayKey)
	fmt.Fprintf(out, "Map:      %s (%s)\n", rec.MapName, rec.MapTileset)
	fmt.Fprintf(out, "Type:     %s\n", rec.GameType)
	if !rec.PlayedAt.IsZero() {
		fmt.Fprintf(out, "Played:   %s\n", rec.PlayedAt.UTC().Format(time.DateTime))
	}
	fmt.Fprintf(out, "Duration: %s\n", rec.DurationText)

	fmt.Fprintln(out, "Players:")
	for _, p := range rec.Participants {
		name := "?"
		if p.Identity != nil {
			name = p.Identity.Name
		}
		marker := ""
		if p.IsWinner {
			marker = "  (winner)"
		}
		fmt.Fprintf(out, "  [%d] %-25s %-8s APM %.0f%s\n", p.Slot, name, p.Race, p.APM, marker)
	}

	fmt.Fprintf(out, "Result:   %s\n", rec.MyResult)
	if res.CommandDiag != nil {
		fmt.Fprintf(out, "Note:     section %s unusable, header-only record\n", res.CommandDiag.Section)
	}
	if res.StreamDiag != nil {
		fmt.Fprintf(out, "Note:     %s\n", res.StreamDiag.Error())
	}

	if len(rec.Chat) > 0 {
		fmt.Fprintln(out, "Chat:")
		for _, msg := range rec.Chat {
			name := fmt.Sprintf("slot %d", msg.Slot)
			if slot := res.Header.Slot(msg.Slot); slot != nil {
				name = slot.Name
			}
			fmt.Fprintf(out, "  %s  %s: %s\n", match.FormatDuration(msg.Offset), name, msg.Text)
		}
	}
}

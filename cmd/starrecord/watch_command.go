package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"starrecord/internal/notify"
	"starrecord/internal/records"
	"starrecord/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [folder]",
		Short: "Watch the replay folder and report records as games finish",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := cfg.ReplayDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no replay folder configured; pass one or run set-replay-dir")
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("replay folder not found: %s", dir)
			}
			if len(args) == 1 && dir != cfg.ReplayDir {
				cfg.ReplayDir = dir
				if err := ctx.saveConfig(); err != nil {
					return err
				}
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// One watcher per database: a second instance would store
			// and notify every game twice.
			lock := flock.New(cfg.DBPath + ".watch.lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire watch lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another watcher is already running for %s", cfg.DBPath)
			}
			defer lock.Unlock()

			mgr, err := ctx.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			notifier := notify.New(cfg.NtfyTopic)

			handler := func(hctx context.Context, path string) {
				rec, err := mgr.ProcessReplay(hctx, path)
				if err != nil {
					logger.Warn("replay processing failed", "replay", path, "error", err)
					return
				}
				if rec == nil {
					return
				}

				opponent, err := mgr.OpponentOf(hctx, rec)
				if err != nil || opponent == "" {
					return
				}
				selfNames, err := mgr.SelfNames(hctx)
				if err != nil {
					return
				}
				record, err := mgr.Reader().RecordVs(hctx, opponent, selfNames)
				if err != nil {
					logger.Warn("record lookup failed", "opponent", opponent, "error", err)
					return
				}

				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), records.FormatHeadToHead(record, 5))

				if cfg.NotifyOnNewGame {
					if err := notifier.NotifyNewGame(hctx, "StarRecord", records.FormatShort(record)); err != nil {
						logger.Warn("notification failed", "error", err)
					}
				}
			}

			watchCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s. Stop with Ctrl+C.\n", dir)
			settle := time.Duration(cfg.WatchSettleSeconds) * time.Second
			watcher := watch.New(dir, settle, handler, logger)
			if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

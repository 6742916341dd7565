// Package records renders win/loss reports for the terminal.
package records

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"starrecord/internal/db"
)

// FormatHeadToHead renders the record against one opponent, with the
// most recent games listed.
func FormatHeadToHead(record *db.HeadToHead, recent int) string {
	total := record.Wins + record.Losses
	if total == 0 && len(record.Games) == 0 {
		return fmt.Sprintf("%s: no games on record", record.Opponent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "vs %s: %dW %dL (%d games)\n",
		record.Opponent, record.Wins, record.Losses, total)

	games := record.Games
	if recent > 0 && len(games) > recent {
		games = games[:recent]
	}
	for _, g := range games {
		date := g.PlayedAt
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Fprintf(&b, "  %-10s | %-7s | %s | %s\n", date, g.Result, g.MapName, g.DurationText)
	}
	return b.String()
}

// FormatShort renders the one-line summary used for notifications.
func FormatShort(record *db.HeadToHead) string {
	total := record.Wins + record.Losses
	if total == 0 {
		return fmt.Sprintf("%s: first game", record.Opponent)
	}
	last := ""
	if len(record.Games) > 0 && len(record.Games[0].PlayedAt) >= 10 {
		last = fmt.Sprintf(" (last: %s)", record.Games[0].PlayedAt[:10])
	}
	return fmt.Sprintf("vs %s: %dW %dL%s", record.Opponent, record.Wins, record.Losses, last)
}

// WriteSummaries writes the all-opponents report. On a terminal the
// report is a rendered table; otherwise plain tab-separated lines.
func WriteSummaries(w io.Writer, summaries []db.OpponentSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No games on record.")
		return
	}

	if isTerminal(w) {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Opponent", "W", "L", "Total", "Last Played"})
		for _, s := range summaries {
			t.AppendRow(table.Row{s.Opponent, s.Wins, s.Losses, s.Wins + s.Losses, shortDate(s.LastPlayed)})
		}
		t.Render()
		return
	}

	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			s.Opponent, s.Wins, s.Losses, s.Wins+s.Losses, shortDate(s.LastPlayed))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func shortDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

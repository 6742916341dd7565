package records_test

import (
	"bytes"
	"strings"
	"testing"

	"starrecord/internal/db"
	"starrecord/internal/records"
)

func sampleRecord() *db.HeadToHead {
	return &db.HeadToHead{
		Opponent: "Bob",
		Wins:     2,
		Losses:   1,
		Games: []db.GameSummary{
			{PlayedAt: "2026-02-08 11:30:00", MapName: "Fighting Spirit", Result: "loss", DurationText: "0:12:30"},
			{PlayedAt: "2026-02-07 02:06:24", MapName: "Polypoid", Result: "win", DurationText: "0:08:15"},
			{PlayedAt: "2026-02-06 23:00:00", MapName: "Eclipse", Result: "win", DurationText: "0:21:02"},
		},
	}
}

func TestFormatHeadToHead(t *testing.T) {
	out := records.FormatHeadToHead(sampleRecord(), 2)

	if !strings.Contains(out, "vs Bob: 2W 1L (3 games)") {
		t.Errorf("missing summary line in %q", out)
	}
	if !strings.Contains(out, "2026-02-08") || !strings.Contains(out, "Fighting Spirit") {
		t.Errorf("missing newest game in %q", out)
	}
	if strings.Contains(out, "Eclipse") {
		t.Errorf("recent limit not applied in %q", out)
	}
}

func TestFormatHeadToHeadNoGames(t *testing.T) {
	out := records.FormatHeadToHead(&db.HeadToHead{Opponent: "Bob"}, 5)
	if out != "Bob: no games on record" {
		t.Errorf("out = %q", out)
	}
}

func TestFormatShort(t *testing.T) {
	got := records.FormatShort(sampleRecord())
	want := "vs Bob: 2W 1L (last: 2026-02-08)"
	if got != want {
		t.Errorf("FormatShort = %q, want %q", got, want)
	}

	got = records.FormatShort(&db.HeadToHead{Opponent: "Carol"})
	if got != "Carol: first game" {
		t.Errorf("FormatShort = %q", got)
	}
}

func TestWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	records.WriteSummaries(&buf, []db.OpponentSummary{
		{Opponent: "Bob", Wins: 2, Losses: 1, LastPlayed: "2026-02-08 11:30:00"},
		{Opponent: "Carol", Wins: 0, Losses: 3, LastPlayed: "2026-01-15 20:00:00"},
	})

	// A plain writer is not a terminal, so the output is tab-separated.
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "Bob\t2\t1\t3\t2026-02-08" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Carol\t0\t3\t3\t2026-01-15" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestWriteSummariesEmpty(t *testing.T) {
	var buf bytes.Buffer
	records.WriteSummaries(&buf, nil)
	if !strings.Contains(buf.String(), "No games on record") {
		t.Errorf("out = %q", buf.String())
	}
}

package replay_test

import (
	"testing"

	"starrecord/internal/replay"
)

func slots(n int) []replay.SlotDeclaration {
	out := make([]replay.SlotDeclaration, n)
	for i := range out {
		out[i] = replay.SlotDeclaration{Index: i}
	}
	return out
}

func TestResolveOutcomeOneVsOne(t *testing.T) {
	signals := []replay.OutcomeSignal{
		{Slot: 1, Frame: 2400, Kind: replay.SignalLeft},
	}
	out := replay.ResolveOutcome(signals, slots(2))
	if out.WinnerSlot != 0 || out.LoserSlot != 1 {
		t.Fatalf("outcome = %+v, want winner 0 loser 1", out)
	}
}

func TestResolveOutcomeAllSlotsRemoved(t *testing.T) {
	// A defeated slot cannot outlast its own leave; when both slots end
	// up removed the outcome must be unknown, not a crash.
	signals := []replay.OutcomeSignal{
		{Slot: 0, Frame: 100, Kind: replay.SignalLeft},
		{Slot: 1, Frame: 150, Kind: replay.SignalDefeated},
	}
	out := replay.ResolveOutcome(signals, slots(2))
	if out != replay.UnknownOutcome {
		t.Fatalf("outcome = %+v, want unknown", out)
	}
}

func TestResolveOutcomeNoSignals(t *testing.T) {
	out := replay.ResolveOutcome(nil, slots(2))
	if out != replay.UnknownOutcome {
		t.Fatalf("outcome = %+v, want unknown", out)
	}
}

func TestResolveOutcomeMultipleSurvivors(t *testing.T) {
	signals := []replay.OutcomeSignal{
		{Slot: 0, Frame: 100, Kind: replay.SignalLeft},
	}
	out := replay.ResolveOutcome(signals, slots(4))
	if out != replay.UnknownOutcome {
		t.Fatalf("outcome = %+v, want unknown", out)
	}
}

func TestResolveOutcomeMultiplayerWinnerOnly(t *testing.T) {
	signals := []replay.OutcomeSignal{
		{Slot: 0, Frame: 100, Kind: replay.SignalDefeated},
		{Slot: 2, Frame: 200, Kind: replay.SignalLeft},
		{Slot: 3, Frame: 300, Kind: replay.SignalDefeated},
	}
	out := replay.ResolveOutcome(signals, slots(4))
	if out.WinnerSlot != 1 {
		t.Fatalf("winner = %d, want 1", out.WinnerSlot)
	}
	if out.LoserSlot != -1 {
		t.Fatalf("loser = %d, want unset for more than two participants", out.LoserSlot)
	}
}

func TestResolveOutcomeDuplicateSignalsIgnored(t *testing.T) {
	signals := []replay.OutcomeSignal{
		{Slot: 1, Frame: 100, Kind: replay.SignalLeft},
		{Slot: 1, Frame: 120, Kind: replay.SignalDefeated},
	}
	out := replay.ResolveOutcome(signals, slots(2))
	if out.WinnerSlot != 0 || out.LoserSlot != 1 {
		t.Fatalf("outcome = %+v, want winner 0 loser 1", out)
	}
}

func TestResolveOutcomeSingleSlotGame(t *testing.T) {
	signals := []replay.OutcomeSignal{
		{Slot: 0, Frame: 100, Kind: replay.SignalLeft},
	}
	out := replay.ResolveOutcome(signals, slots(1))
	if out != replay.UnknownOutcome {
		t.Fatalf("outcome = %+v, want unknown", out)
	}
}

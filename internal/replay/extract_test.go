package replay_test

import (
	"testing"
	"time"

	"starrecord/internal/replay"
	"starrecord/internal/replay/replaytest"
)

func twoSlotHeader(t *testing.T) *replay.Header {
	t.Helper()
	raw := replaytest.EncodeHeader(replaytest.FastestHeader(
		replaytest.Slot{Index: 0, Name: "Alice", Race: replay.RaceTerran},
		replaytest.Slot{Index: 1, Name: "Bob", Race: replay.RaceZerg},
	))
	h, err := replay.DecodeHeader(raw)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	return h
}

func TestExtractChatAndSignals(t *testing.T) {
	hdr := twoSlotHeader(t)

	var s replaytest.Stream
	s.Block(48, replaytest.Chat(0, "gl hf")).
		Block(96, replaytest.Chat(1, "u2")).
		Block(2400, replaytest.Leave(1))

	ex := replay.Extract(replay.NewStreamDecoder(s.Bytes()), hdr, hdr.FrameRate())

	if len(ex.Chat) != 2 {
		t.Fatalf("got %d chat events, want 2", len(ex.Chat))
	}
	if ex.Chat[0].Text != "gl hf" || ex.Chat[0].Slot != 0 {
		t.Errorf("chat[0] = %+v", ex.Chat[0])
	}
	if ex.Chat[0].Offset != 2*time.Second {
		t.Errorf("chat[0] offset = %v, want 2s", ex.Chat[0].Offset)
	}
	if ex.Chat[1].Offset != 4*time.Second {
		t.Errorf("chat[1] offset = %v, want 4s", ex.Chat[1].Offset)
	}

	if len(ex.Signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(ex.Signals))
	}
	sig := ex.Signals[0]
	if sig.Slot != 1 || sig.Frame != 2400 || sig.Kind != replay.SignalLeft {
		t.Errorf("signal = %+v", sig)
	}

	if ex.LastFrame != 2400 {
		t.Errorf("last frame = %d, want 2400", ex.LastFrame)
	}
}

func TestExtractDefeatSignalKind(t *testing.T) {
	hdr := twoSlotHeader(t)

	var s replaytest.Stream
	s.Block(500, replaytest.Defeat(0))

	ex := replay.Extract(replay.NewStreamDecoder(s.Bytes()), hdr, hdr.FrameRate())
	if len(ex.Signals) != 1 || ex.Signals[0].Kind != replay.SignalDefeated {
		t.Fatalf("signals = %+v", ex.Signals)
	}
}

func TestExtractDropsUndeclaredSlots(t *testing.T) {
	hdr := twoSlotHeader(t)

	var s replaytest.Stream
	s.Block(10, replaytest.Chat(7, "ghost"), replaytest.Leave(9)).
		Block(20, replaytest.Chat(0, "real"))

	ex := replay.Extract(replay.NewStreamDecoder(s.Bytes()), hdr, hdr.FrameRate())

	if len(ex.Chat) != 1 || ex.Chat[0].Text != "real" {
		t.Fatalf("chat = %+v", ex.Chat)
	}
	if len(ex.Signals) != 0 {
		t.Fatalf("signals from undeclared slots kept: %+v", ex.Signals)
	}
}

func TestExtractCountsActionsForAPM(t *testing.T) {
	hdr := twoSlotHeader(t)

	var s replaytest.Stream
	// 30 actions for slot 0 over one minute of frames.
	for i := 0; i < 30; i++ {
		s.Block(uint32(i*48), replaytest.Move(0, uint16(i), uint16(i)))
	}
	s.Block(1440, replaytest.Chat(0, "chat is not an action"))

	ex := replay.Extract(replay.NewStreamDecoder(s.Bytes()), hdr, hdr.FrameRate())

	if ex.Actions[0] != 30 {
		t.Fatalf("actions[0] = %d, want 30", ex.Actions[0])
	}
	// 1440 frames at 24 fps is exactly one minute.
	if apm := ex.APM(0, hdr.FrameRate()); apm != 30 {
		t.Errorf("APM = %v, want 30", apm)
	}
	if apm := ex.APM(1, hdr.FrameRate()); apm != 0 {
		t.Errorf("idle slot APM = %v, want 0", apm)
	}
}

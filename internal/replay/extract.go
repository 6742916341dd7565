package replay

import "time"

// SignalKind classifies an outcome-relevant stream event.
type SignalKind int

const (
	SignalLeft SignalKind = iota
	SignalDefeated
)

func (k SignalKind) String() string {
	if k == SignalDefeated {
		return "defeated"
	}
	return "left"
}

// ChatEvent is a chat command lifted out of the stream, with its frame
// converted to a wall-clock offset from game start.
type ChatEvent struct {
	Slot   int
	Frame  uint32
	Offset time.Duration
	Text   string
}

// OutcomeSignal is a leave or defeat command lifted out of the stream.
type OutcomeSignal struct {
	Slot  int
	Frame uint32
	Kind  SignalKind
}

// Extraction is the result of one pass over the command stream: the
// ordered chat transcript, the ordered outcome signals, per-slot action
// counts for APM, and stream totals.
type Extraction struct {
	Chat      []ChatEvent
	Signals   []OutcomeSignal
	Actions   map[int]int
	LastFrame uint32
	Events    int
}

// Extract consumes the command stream exactly once, keeping original
// stream order. Events from slots the header never declared are
// dropped. Chat text payloads are length-prefixed; the text is decoded
// with the same tolerant rules as header names.
func Extract(d *StreamDecoder, hdr *Header, frameRate float64) *Extraction {
	ex := &Extraction{Actions: make(map[int]int)}

	for {
		ev, ok := d.Next()
		if !ok {
			break
		}
		ex.Events++
		if ev.Frame > ex.LastFrame {
			ex.LastFrame = ev.Frame
		}
		if hdr.Slot(ev.Slot) == nil {
			continue
		}

		switch ev.Kind {
		case CmdChat:
			if len(ev.Payload) < 1 {
				continue
			}
			ex.Chat = append(ex.Chat, ChatEvent{
				Slot:   ev.Slot,
				Frame:  ev.Frame,
				Offset: frameOffset(ev.Frame, frameRate),
				Text:   decodeText(ev.Payload[1:]),
			})
		case CmdLeaveGame:
			kind := SignalLeft
			if len(ev.Payload) >= 1 && ev.Payload[0] == leaveReasonDefeated {
				kind = SignalDefeated
			}
			ex.Signals = append(ex.Signals, OutcomeSignal{Slot: ev.Slot, Frame: ev.Frame, Kind: kind})
		case CmdSync:
			// Engine keep-alive, not a player action.
		default:
			ex.Actions[ev.Slot]++
		}
	}

	return ex
}

// APM returns actions per minute for one slot over the observed stream
// length. Zero when the stream carried no frames.
func (ex *Extraction) APM(slot int, frameRate float64) float64 {
	if ex.LastFrame == 0 || frameRate <= 0 {
		return 0
	}
	minutes := float64(ex.LastFrame) / frameRate / 60
	return float64(ex.Actions[slot]) / minutes
}

func frameOffset(frame uint32, frameRate float64) time.Duration {
	if frameRate <= 0 {
		return 0
	}
	return time.Duration(float64(frame) / frameRate * float64(time.Second))
}

package replay

import (
	"errors"
	"time"
)

// Result is everything recovered from one replay container. Header is
// always present; the stream-derived fields may be empty when the
// command section was damaged or truncated. CommandDiag and
// StreamDiag carry the non-fatal diagnostics for those two degradation
// paths.
type Result struct {
	Key       string
	Header    *Header
	FrameRate float64

	Chat      []ChatEvent
	Signals   []OutcomeSignal
	Outcome   Outcome
	Actions   map[int]int
	LastFrame uint32
	Events    int

	CommandDiag *CorruptSectionError
	StreamDiag  *StreamTruncatedError
}

// Decode runs the full pipeline over one replay's raw bytes: container
// read, header decode, command stream walk, chat and signal extraction,
// and outcome resolution. key identifies the replay in errors and in
// the resulting record.
//
// Structural failures (bad container, damaged header section) abort
// with an error. A damaged or truncated command section degrades to a
// partial Result instead: header fields stay usable, chat is empty, and
// the outcome is unknown.
func Decode(data []byte, key string) (*Result, error) {
	container, err := ReadContainer(data)
	if err != nil {
		return nil, err
	}

	rawHeader, err := container.Section(SectionHeader)
	if err != nil {
		return nil, err
	}
	header, err := DecodeHeader(rawHeader)
	if err != nil {
		return nil, &CorruptSectionError{Section: SectionHeader, Err: err}
	}

	res := &Result{
		Key:       key,
		Header:    header,
		FrameRate: header.FrameRate(),
		Outcome:   UnknownOutcome,
		Actions:   map[int]int{},
	}

	rawCommands, err := container.Section(SectionCommands)
	if err != nil {
		var corrupt *CorruptSectionError
		if errors.As(err, &corrupt) {
			res.CommandDiag = corrupt
			return res, nil
		}
		return nil, err
	}

	decoder := NewStreamDecoder(rawCommands)
	ex := Extract(decoder, header, res.FrameRate)
	if streamErr := decoder.Err(); streamErr != nil {
		var truncated *StreamTruncatedError
		if errors.As(streamErr, &truncated) {
			res.StreamDiag = truncated
		}
	}

	res.Chat = ex.Chat
	res.Signals = ex.Signals
	res.Actions = ex.Actions
	res.LastFrame = ex.LastFrame
	res.Events = ex.Events
	res.Outcome = ResolveOutcome(ex.Signals, header.Slots)

	return res, nil
}

// Duration is the observed game length: last frame over the frame rate.
func (r *Result) Duration() time.Duration {
	if r.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(r.LastFrame) / r.FrameRate * float64(time.Second))
}

// APM returns actions per minute for one slot.
func (r *Result) APM(slot int) float64 {
	if r.LastFrame == 0 || r.FrameRate <= 0 {
		return 0
	}
	minutes := float64(r.LastFrame) / r.FrameRate / 60
	return float64(r.Actions[slot]) / minutes
}

package replay

import "encoding/binary"

// CommandKind identifies one entry in the closed command table.
type CommandKind uint8

const (
	CmdSelect       CommandKind = 0x09
	CmdShiftSelect  CommandKind = 0x0A
	CmdShiftRemove  CommandKind = 0x0B
	CmdBuild        CommandKind = 0x0C
	CmdVision       CommandKind = 0x0D
	CmdAlliance     CommandKind = 0x0E
	CmdHotkey       CommandKind = 0x13
	CmdMove         CommandKind = 0x14
	CmdTargetAction CommandKind = 0x15
	CmdTrain        CommandKind = 0x1F
	CmdCancelTrain  CommandKind = 0x20
	CmdUpgrade      CommandKind = 0x32
	CmdSync         CommandKind = 0x37
	CmdLeaveGame    CommandKind = 0x57
	CmdChat         CommandKind = 0x5C
)

// Leave reason codes carried in the CmdLeaveGame payload.
const (
	leaveReasonQuit     = 0x00
	leaveReasonDefeated = 0x01
)

// payloadSpec describes how to take one command's payload off the wire.
// Fixed-size kinds state their size; prefixed kinds read a leading u8
// count of trailing units.
type payloadSpec struct {
	fixed    int
	prefixed bool
	unit     int
}

// commandTable is the closed kind-to-length table. Kinds absent from the
// table have unknowable length and stop decoding, since the stream
// cannot be re-synchronized past them.
var commandTable = map[CommandKind]payloadSpec{
	CmdSelect:       {prefixed: true, unit: 2},
	CmdShiftSelect:  {prefixed: true, unit: 2},
	CmdShiftRemove:  {prefixed: true, unit: 2},
	CmdBuild:        {fixed: 7},
	CmdVision:       {fixed: 2},
	CmdAlliance:     {fixed: 4},
	CmdHotkey:       {fixed: 2},
	CmdMove:         {fixed: 4},
	CmdTargetAction: {fixed: 9},
	CmdTrain:        {fixed: 2},
	CmdCancelTrain:  {fixed: 2},
	CmdUpgrade:      {fixed: 1},
	CmdSync:         {fixed: 6},
	CmdLeaveGame:    {fixed: 1},
	CmdChat:         {prefixed: true, unit: 1},
}

// CommandEvent is one frame-tagged entry of the command stream. The
// decoder knows the kind and payload length of every event but never
// interprets payload semantics.
type CommandEvent struct {
	Frame   uint32
	Slot    int
	Kind    CommandKind
	Payload []byte
}

// StreamDecoder walks the decompressed command section as a lazy,
// finite, non-restartable sequence of CommandEvent. The section is a
// run of frame blocks: a u32 absolute frame, a u8 block length, then
// that many bytes of {slot u8, kind u8, payload} entries. Frames must
// be non-decreasing; a decrease is treated as corruption.
type StreamDecoder struct {
	data     []byte
	pos      int
	frame    uint32
	started  bool
	blockEnd int
	err      *StreamTruncatedError
	done     bool
}

// NewStreamDecoder wraps a decompressed command section.
func NewStreamDecoder(raw []byte) *StreamDecoder {
	return &StreamDecoder{data: raw}
}

// Next returns the next command event. It reports false once the stream
// is exhausted or decoding stopped; Err distinguishes the two.
func (d *StreamDecoder) Next() (CommandEvent, bool) {
	for !d.done {
		if d.pos >= d.blockEnd {
			if !d.advanceBlock() {
				return CommandEvent{}, false
			}
			continue
		}

		ev, ok := d.readCommand()
		if !ok {
			return CommandEvent{}, false
		}
		return ev, true
	}
	return CommandEvent{}, false
}

// Err reports why decoding stopped early, or nil if the stream was
// consumed to its natural end.
func (d *StreamDecoder) Err() error {
	if d.err == nil {
		return nil
	}
	return d.err
}

// advanceBlock reads the next frame block preamble. Returns false at
// clean end of stream or on corruption.
func (d *StreamDecoder) advanceBlock() bool {
	if d.pos == len(d.data) {
		d.done = true
		return false
	}
	if d.pos+5 > len(d.data) {
		d.stop("block preamble cut short")
		return false
	}

	frame := binary.LittleEndian.Uint32(d.data[d.pos:])
	if d.started && frame < d.frame {
		d.stop("frame went backwards")
		return false
	}
	blockLen := int(d.data[d.pos+4])
	d.pos += 5

	if d.pos+blockLen > len(d.data) {
		d.stop("block body cut short")
		return false
	}

	d.frame = frame
	d.started = true
	d.blockEnd = d.pos + blockLen
	return true
}

// readCommand reads one {slot, kind, payload} entry inside the current
// block. Entries may not straddle the block boundary.
func (d *StreamDecoder) readCommand() (CommandEvent, bool) {
	if d.pos+2 > d.blockEnd {
		d.stop("command entry cut short")
		return CommandEvent{}, false
	}
	slot := int(d.data[d.pos])
	kind := CommandKind(d.data[d.pos+1])
	d.pos += 2

	spec, ok := commandTable[kind]
	if !ok {
		d.stop("unknown command kind with unknowable length")
		return CommandEvent{}, false
	}

	size := spec.fixed
	if spec.prefixed {
		if d.pos >= d.blockEnd {
			d.stop("length prefix cut short")
			return CommandEvent{}, false
		}
		size = 1 + int(d.data[d.pos])*spec.unit
	}
	if d.pos+size > d.blockEnd {
		d.stop("payload overruns frame block")
		return CommandEvent{}, false
	}

	ev := CommandEvent{
		Frame:   d.frame,
		Slot:    slot,
		Kind:    kind,
		Payload: d.data[d.pos : d.pos+size],
	}
	d.pos += size
	return ev, true
}

func (d *StreamDecoder) stop(reason string) {
	d.err = &StreamTruncatedError{Offset: d.pos, Reason: reason}
	d.done = true
}

// Package replaytest builds synthetic replay containers for tests.
package replaytest

import (
	"encoding/binary"
	"time"

	"github.com/golang/snappy"

	"starrecord/internal/replay"
)

// Slot declares one participant for a synthetic header.
type Slot struct {
	Index int
	Name  string
	Race  replay.Race
}

// Header collects the fields written into a synthetic header section.
type Header struct {
	EngineVersion uint16
	CreatedAt     time.Time
	GameType      uint16
	GameSpeed     uint8
	Tileset       uint8
	MapName       string
	Slots         []Slot
}

// FastestHeader returns a header at the fastest game speed (24 fps)
// with the given slots, which is what almost every test wants.
func FastestHeader(slots ...Slot) Header {
	return Header{
		EngineVersion: 74,
		CreatedAt:     time.Date(2026, 2, 7, 2, 6, 24, 0, time.UTC),
		GameType:      4,
		GameSpeed:     6,
		Tileset:       4,
		MapName:       "Fighting Spirit",
		Slots:         slots,
	}
}

// EncodeHeader renders a header section in wire layout.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, 0, 64)
	buf = binary.LittleEndian.AppendUint16(buf, h.EngineVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.CreatedAt.Unix()))
	buf = binary.LittleEndian.AppendUint16(buf, h.GameType)
	buf = append(buf, h.GameSpeed, h.Tileset)
	buf = append(buf, fixedString(h.MapName, 32)...)
	buf = append(buf, byte(len(h.Slots)))
	for _, s := range h.Slots {
		buf = append(buf, byte(s.Index), raceCode(s.Race))
		buf = append(buf, fixedString(s.Name, 25)...)
	}
	return buf
}

// Stream accumulates frame blocks of a synthetic command section.
type Stream struct {
	buf []byte
}

// Block opens a frame block holding the given pre-encoded commands.
func (s *Stream) Block(frame uint32, commands ...[]byte) *Stream {
	var body []byte
	for _, c := range commands {
		body = append(body, c...)
	}
	s.buf = binary.LittleEndian.AppendUint32(s.buf, frame)
	s.buf = append(s.buf, byte(len(body)))
	s.buf = append(s.buf, body...)
	return s
}

// Raw appends arbitrary bytes, for corrupting the stream on purpose.
func (s *Stream) Raw(b ...byte) *Stream {
	s.buf = append(s.buf, b...)
	return s
}

// Bytes returns the encoded command section.
func (s *Stream) Bytes() []byte { return s.buf }

// Chat encodes a chat command entry.
func Chat(slot int, text string) []byte {
	cmd := []byte{byte(slot), byte(replay.CmdChat), byte(len(text))}
	return append(cmd, text...)
}

// Leave encodes a leave-game entry with reason "quit".
func Leave(slot int) []byte {
	return []byte{byte(slot), byte(replay.CmdLeaveGame), 0x00}
}

// Defeat encodes a leave-game entry with reason "defeated".
func Defeat(slot int) []byte {
	return []byte{byte(slot), byte(replay.CmdLeaveGame), 0x01}
}

// Move encodes a fixed-length move command.
func Move(slot int, x, y uint16) []byte {
	cmd := []byte{byte(slot), byte(replay.CmdMove)}
	cmd = binary.LittleEndian.AppendUint16(cmd, x)
	return binary.LittleEndian.AppendUint16(cmd, y)
}

// Hotkey encodes a fixed-length hotkey command.
func Hotkey(slot int, action, group byte) []byte {
	return []byte{byte(slot), byte(replay.CmdHotkey), action, group}
}

// Select encodes a length-prefixed selection command.
func Select(slot int, units ...uint16) []byte {
	cmd := []byte{byte(slot), byte(replay.CmdSelect), byte(len(units))}
	for _, u := range units {
		cmd = binary.LittleEndian.AppendUint16(cmd, u)
	}
	return cmd
}

// Section is a named raw section for Container.
type Section struct {
	Tag string
	Raw []byte
	// Mangle truncates the compressed payload so decompression fails.
	Mangle bool
}

// Container assembles a complete container file from raw sections,
// compressing each one.
func Container(sections ...Section) []byte {
	preamble := []byte("SREP")
	preamble = binary.LittleEndian.AppendUint16(preamble, 1)
	preamble = append(preamble, byte(len(sections)))

	tableSize := len(sections) * 16
	offset := len(preamble) + tableSize

	var table, body []byte
	for _, s := range sections {
		compressed := snappy.Encode(nil, s.Raw)
		if s.Mangle && len(compressed) > 2 {
			compressed = compressed[:len(compressed)/2]
		}
		table = append(table, s.Tag...)
		table = binary.LittleEndian.AppendUint32(table, uint32(offset))
		table = binary.LittleEndian.AppendUint32(table, uint32(len(compressed)))
		table = binary.LittleEndian.AppendUint32(table, uint32(len(s.Raw)))
		body = append(body, compressed...)
		offset += len(compressed)
	}

	out := append(preamble, table...)
	return append(out, body...)
}

func fixedString(s string, size int) []byte {
	buf := make([]byte, size)
	copy(buf, s)
	return buf
}

func raceCode(r replay.Race) byte {
	switch r {
	case replay.RaceZerg:
		return 0
	case replay.RaceTerran:
		return 1
	case replay.RaceProtoss:
		return 2
	default:
		return 0xFF
	}
}

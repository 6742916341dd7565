package replay

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// Race is a declared player race from the header's closed code table.
type Race uint8

const (
	RaceZerg Race = iota
	RaceTerran
	RaceProtoss
	RaceUnknown
)

func (r Race) String() string {
	switch r {
	case RaceZerg:
		return "Zerg"
	case RaceTerran:
		return "Terran"
	case RaceProtoss:
		return "Protoss"
	default:
		return "Unknown"
	}
}

// raceFromCode maps a header race code onto the closed race set.
// Unrecognized codes become RaceUnknown rather than failing the decode.
func raceFromCode(code byte) Race {
	switch code {
	case 0:
		return RaceZerg
	case 1:
		return RaceTerran
	case 2:
		return RaceProtoss
	default:
		return RaceUnknown
	}
}

const (
	mapNameBytes  = 32
	slotNameBytes = 25

	// version(2) + created(4) + game type(2) + speed(1) + tileset(1)
	// + map name + slot count(1)
	headerFixedSize = 2 + 4 + 2 + 1 + 1 + mapNameBytes + 1
	slotEntrySize   = 1 + 1 + slotNameBytes
)

var tilesetNames = map[uint8]string{
	0: "Badlands",
	1: "Space Platform",
	2: "Installation",
	3: "Ashworld",
	4: "Jungle",
	5: "Desert",
	6: "Ice",
	7: "Twilight",
}

var gameTypeNames = map[uint16]string{
	2:  "Melee",
	3:  "Free For All",
	4:  "One on One",
	10: "Use Map Settings",
	15: "Top vs Bottom",
}

// Frames per second by game speed code, slowest to fastest. Codes past
// the end of the table fall back to the fastest speed, which is what
// every ladder game uses.
var frameRates = [...]float64{6, 9, 12, 15, 18, 21, 24}

// SlotDeclaration is one declared participant position from the header.
type SlotDeclaration struct {
	Index int
	Name  string
	Race  Race
}

// Header holds the decoded metadata section of a replay.
type Header struct {
	EngineVersion uint16
	CreatedAt     time.Time
	GameType      uint16
	GameSpeed     uint8
	Tileset       uint8
	MapName       string
	Slots         []SlotDeclaration
}

// DecodeHeader parses the decompressed header section in a single
// forward pass: fixed-width fields first, then one entry per declared
// slot. Observer-only games legitimately declare zero slots.
func DecodeHeader(raw []byte) (*Header, error) {
	if len(raw) < headerFixedSize {
		return nil, fmt.Errorf("header is %d bytes, need at least %d", len(raw), headerFixedSize)
	}

	h := &Header{
		EngineVersion: binary.LittleEndian.Uint16(raw[0:2]),
		CreatedAt:     time.Unix(int64(binary.LittleEndian.Uint32(raw[2:6])), 0).UTC(),
		GameType:      binary.LittleEndian.Uint16(raw[6:8]),
		GameSpeed:     raw[8],
		Tileset:       raw[9],
		MapName:       decodeText(raw[10 : 10+mapNameBytes]),
	}

	slotCount := int(raw[headerFixedSize-1])
	need := headerFixedSize + slotCount*slotEntrySize
	if len(raw) < need {
		return nil, fmt.Errorf("header declares %d slots but holds %d bytes, need %d", slotCount, len(raw), need)
	}

	h.Slots = make([]SlotDeclaration, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		entry := raw[headerFixedSize+i*slotEntrySize:]
		h.Slots = append(h.Slots, SlotDeclaration{
			Index: int(entry[0]),
			Race:  raceFromCode(entry[1]),
			Name:  decodeText(entry[2 : 2+slotNameBytes]),
		})
	}

	return h, nil
}

// Slot returns the declaration for a slot index, or nil if the header
// never declared it.
func (h *Header) Slot(index int) *SlotDeclaration {
	for i := range h.Slots {
		if h.Slots[i].Index == index {
			return &h.Slots[i]
		}
	}
	return nil
}

// FrameRate reports the logical frames per second implied by the
// header's game speed.
func (h *Header) FrameRate() float64 {
	if int(h.GameSpeed) < len(frameRates) {
		return frameRates[h.GameSpeed]
	}
	return frameRates[len(frameRates)-1]
}

// TilesetName returns a display name for the tileset code.
func (h *Header) TilesetName() string {
	if name, ok := tilesetNames[h.Tileset]; ok {
		return name
	}
	return fmt.Sprintf("Tileset %d", h.Tileset)
}

// GameTypeName returns a display name for the game type code.
func (h *Header) GameTypeName() string {
	if name, ok := gameTypeNames[h.GameType]; ok {
		return name
	}
	return fmt.Sprintf("Type %d", h.GameType)
}

// decodeText turns a fixed-capacity byte buffer into a string. The
// buffer is cut at the first NUL. Player names from Korean clients are
// commonly EUC-KR, so invalid UTF-8 is retried through that decoder
// before falling back to replacement runes. Mis-decodable bytes never
// fail the header.
func decodeText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	if decoded, err := korean.EUCKR.NewDecoder().Bytes(b); err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(b), "�")
}

package replay

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Section tags found in the container's section table.
const (
	SectionHeader   = "GHDR"
	SectionCommands = "CMDS"
)

const (
	containerMagic   = "SREP"
	containerVersion = 1

	// magic(4) + version(2) + section count(1)
	containerPreamble = 7
	// tag(4) + offset(4) + compressed size(4) + raw size(4)
	sectionEntrySize = 16
)

var errSectionMissing = errors.New("section not present")

// Container holds the decompressed sections of one replay file.
// Sections that failed to decompress are tracked individually so a
// caller can still use the ones that survived.
type Container struct {
	sections map[string][]byte
	damaged  map[string]*CorruptSectionError
}

// ReadContainer validates the container signature and section table,
// then decompresses every listed section. A bad signature or version is
// a FormatError. A section that cannot be decompressed is recorded and
// reported from Section; it does not fail the whole read.
func ReadContainer(data []byte) (*Container, error) {
	if len(data) < containerPreamble {
		return nil, &FormatError{Reason: "file too short for container preamble"}
	}
	if string(data[:4]) != containerMagic {
		return nil, &FormatError{Reason: "bad magic bytes"}
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != containerVersion {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}
	count := int(data[6])

	tableEnd := containerPreamble + count*sectionEntrySize
	if len(data) < tableEnd {
		return nil, &FormatError{Reason: "section table truncated"}
	}

	c := &Container{
		sections: make(map[string][]byte, count),
		damaged:  make(map[string]*CorruptSectionError),
	}

	for i := 0; i < count; i++ {
		entry := data[containerPreamble+i*sectionEntrySize:]
		tag := string(entry[:4])
		offset := int(binary.LittleEndian.Uint32(entry[4:8]))
		compressedSize := int(binary.LittleEndian.Uint32(entry[8:12]))
		rawSize := int(binary.LittleEndian.Uint32(entry[12:16]))

		if offset < tableEnd || offset+compressedSize > len(data) {
			c.damaged[tag] = &CorruptSectionError{Section: tag, Err: errors.New("section bounds outside file")}
			continue
		}

		raw, err := snappy.Decode(nil, data[offset:offset+compressedSize])
		if err != nil {
			c.damaged[tag] = &CorruptSectionError{Section: tag, Err: err}
			continue
		}
		if len(raw) != rawSize {
			c.damaged[tag] = &CorruptSectionError{
				Section: tag,
				Err:     fmt.Errorf("decompressed to %d bytes, table says %d", len(raw), rawSize),
			}
			continue
		}
		c.sections[tag] = raw
	}

	return c, nil
}

// Section returns the decompressed bytes of one section. Missing and
// damaged sections both surface as a CorruptSectionError naming the
// section.
func (c *Container) Section(tag string) ([]byte, error) {
	if raw, ok := c.sections[tag]; ok {
		return raw, nil
	}
	if err, ok := c.damaged[tag]; ok {
		return nil, err
	}
	return nil, &CorruptSectionError{Section: tag, Err: errSectionMissing}
}

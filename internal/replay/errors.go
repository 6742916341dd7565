package replay

import "fmt"

// FormatError indicates the input is not a replay container at all:
// the magic bytes or the format version did not match. Nothing can be
// salvaged from such a file.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("replay format: %s", e.Reason)
}

// CorruptSectionError indicates a named section could not be located or
// decompressed. Corruption of the header section is fatal for the whole
// decode; corruption of the command section degrades to a header-only
// partial result.
type CorruptSectionError struct {
	Section string
	Err     error
}

func (e *CorruptSectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("replay section %s: corrupt", e.Section)
	}
	return fmt.Sprintf("replay section %s: %v", e.Section, e.Err)
}

func (e *CorruptSectionError) Unwrap() error { return e.Err }

// StreamTruncatedError records why command decoding stopped early.
// It is non-fatal: all events decoded before the stop are retained.
type StreamTruncatedError struct {
	Offset int
	Reason string
}

func (e *StreamTruncatedError) Error() string {
	return fmt.Sprintf("command stream truncated at byte %d: %s", e.Offset, e.Reason)
}

package huffman

import "fmt"

// FormatError reports an artifact whose header or tree shape is corrupt or
// internally inconsistent.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "huffman: malformed artifact: " + e.Reason
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// TruncatedDataError reports a bitstream that ended before the number of
// symbols declared in the header could be decoded.
type TruncatedDataError struct {
	Want    uint64 // symbols declared in the header
	Decoded uint64 // symbols decoded before the bits ran out
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("huffman: bitstream truncated after %d of %d symbols", e.Decoded, e.Want)
}

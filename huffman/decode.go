package huffman

import (
	"bytes"
	"encoding/binary"
)

// Header is the fixed-size prefix of an artifact.
type Header struct {
	Length uint64 // original byte count
	Pad    uint8  // zero bits padding the last byte
}

// ParseHeader validates and returns the header of artifact without decoding
// the payload.
func ParseHeader(artifact []byte) (Header, error) {
	if len(artifact) < headerSize {
		return Header{}, formatErrorf("%d bytes is shorter than the %d byte header", len(artifact), headerSize)
	}
	if !bytes.Equal(artifact[:4], magic[:]) {
		return Header{}, formatErrorf("bad magic %q", artifact[:4])
	}
	h := Header{
		Length: binary.BigEndian.Uint64(artifact[4:12]),
		Pad:    artifact[12],
	}
	if h.Pad > 7 {
		return Header{}, formatErrorf("pad count %d exceeds 7", h.Pad)
	}
	payload := len(artifact) - headerSize
	switch {
	case h.Length == 0 && (payload != 0 || h.Pad != 0):
		return Header{}, formatErrorf("empty input declared with %d payload bytes and pad %d", payload, h.Pad)
	case h.Length != 0 && payload == 0:
		return Header{}, formatErrorf("%d symbols declared without a payload", h.Length)
	}
	return h, nil
}

// Decode reverses Encode. It fails with *FormatError when the header or tree
// shape is inconsistent and with *TruncatedDataError when the bitstream ends
// early. Bits after the last declared symbol are ignored.
func Decode(artifact []byte) ([]byte, error) {
	h, err := ParseHeader(artifact)
	if err != nil {
		return nil, err
	}
	if h.Length == 0 {
		return []byte{}, nil
	}

	r := newBitReader(artifact[headerSize:], h.Pad)
	root, err := readShape(r)
	if err != nil {
		return nil, err
	}

	// every symbol costs at least one bit, which bounds the allocation
	// whatever length the header claims
	out := make([]byte, 0, min(h.Length, r.remaining()))
	for uint64(len(out)) < h.Length {
		n := root
		if n.IsLeaf() {
			bit, ok := r.readBit()
			if !ok {
				return nil, &TruncatedDataError{Want: h.Length, Decoded: uint64(len(out))}
			}
			if bit != 0 {
				return nil, formatErrorf("code 1 in a single-symbol stream at symbol %d", len(out))
			}
		}
		for !n.IsLeaf() {
			bit, ok := r.readBit()
			if !ok {
				return nil, &TruncatedDataError{Want: h.Length, Decoded: uint64(len(out))}
			}
			if bit == 0 {
				n = n.Left
			} else {
				n = n.Right
			}
		}
		out = append(out, n.Symbol)
	}
	return out, nil
}

// readShape rebuilds the tree written by writeShape. Internal nodes waiting
// for children sit on an explicit stack.
func readShape(r *bitReader) (*Node, error) {
	var (
		root      *Node
		pending   []*Node
		seen      [256]bool
		internals int
	)
	for {
		marker, ok := r.readBit()
		if !ok {
			return nil, formatErrorf("tree shape ends mid-traversal")
		}
		n := &Node{}
		if marker == 1 {
			sym, ok := r.readByte()
			if !ok {
				return nil, formatErrorf("tree shape ends inside a leaf symbol")
			}
			if seen[sym] {
				return nil, formatErrorf("symbol %s appears in two leaves", symbolName(sym))
			}
			seen[sym] = true
			n.Symbol, n.lowest = sym, sym
		} else {
			// a full binary tree over at most 256 leaves has at most 255
			// internal nodes
			internals++
			if internals > 255 {
				return nil, formatErrorf("tree shape has more than 255 internal nodes")
			}
		}

		if root == nil {
			root = n
		} else {
			parent := pending[len(pending)-1]
			if parent.Left == nil {
				parent.Left = n
			} else {
				parent.Right = n
				pending = pending[:len(pending)-1]
			}
		}
		if marker == 0 {
			pending = append(pending, n)
		}
		if len(pending) == 0 {
			return root, nil
		}
	}
}

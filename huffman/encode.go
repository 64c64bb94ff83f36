package huffman

import (
	"encoding/binary"
	"math"
)

const headerSize = 13

var magic = [4]byte{'H', 'U', 'F', 1}

// Encode compresses data into a self-describing artifact.
func Encode(data []byte) []byte {
	out := make([]byte, headerSize, headerSize+len(data)/2+64)
	copy(out, magic[:])
	binary.BigEndian.PutUint64(out[4:12], uint64(len(data)))
	if len(data) == 0 {
		return out
	}

	root := BuildTree(Analyze(data))
	var codes [256]Code
	for sym, code := range NewCodeTable(root) {
		codes[sym] = code
	}

	w := &bitWriter{buf: out}
	writeShape(w, root)
	for _, b := range data {
		w.writeCode(codes[b])
	}
	out, pad := w.finish()
	out[12] = pad
	return out
}

// writeShape emits the tree in pre-order: 1 and the symbol for a leaf, 0 for
// an internal node.
func writeShape(w *bitWriter, root *Node) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			w.writeBit(1)
			w.writeByte(n.Symbol)
			continue
		}
		w.writeBit(0)
		stack = append(stack, n.Right, n.Left)
	}
}

// Stats describes one compression.
type Stats struct {
	OriginalSize   int
	CompressedSize int
}

// Ratio is the space saving in percent rounded to two decimals. It is
// negative when the artifact is larger than the input and zero for an empty
// input.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}
	r := (1 - float64(s.CompressedSize)/float64(s.OriginalSize)) * 100
	return math.Round(r*100) / 100
}

// Compress encodes data and reports the sizes involved.
func Compress(data []byte) ([]byte, Stats) {
	artifact := Encode(data)
	return artifact, Stats{OriginalSize: len(data), CompressedSize: len(artifact)}
}

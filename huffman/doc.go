// Package huffman implements a byte-oriented Huffman codec.
//
// Compression runs four stages: Analyze counts symbol frequencies, BuildTree
// derives an optimal prefix tree, NewCodeTable assigns the bit codes and
// Encode writes a self-describing artifact. Decode reverses the last step
// from the artifact alone; it never needs the frequency table.
//
// Artifact layout (integers are big-endian):
//
//	magic   [4]byte  "HUF\x01"
//	length  uint64   number of original bytes
//	pad     uint8    zero bits appended to the final byte, 0..7
//	shape   bits     pre-order tree: 1 = leaf followed by 8 symbol bits, 0 = internal
//	data    bits     concatenated codes, most significant bit first
//
// The shape and data bits form one continuous bit sequence. An empty input
// produces a header with no payload.
//
// Every call builds its own table, tree and codes; nothing is shared between
// calls, so the package is safe for concurrent use.
package huffman

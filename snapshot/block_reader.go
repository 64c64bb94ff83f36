package snapshot

import (
	"encoding/binary"
	"strings"

	"github.com/cockroachdb/errors"
)

// blockReader resolves entries of the data section through the offsets in
// the index block.
type blockReader struct {
	data       []byte
	offsets    []byte // index block, 4B per entry
	numOffsets int
}

// fetchDataFor parses the entry at pos. Every entry was bounds-checked by
// verify, so it cannot fail afterwards.
func (b *blockReader) fetchDataFor(pos int) (key string, val []byte) {
	offset := int(binary.LittleEndian.Uint32(b.offsets[pos*4:]))
	keyLen, n := binary.Uvarint(b.data[offset:])
	offset += n
	valLen, n := binary.Uvarint(b.data[offset:])
	offset += n
	key = string(b.data[offset : offset+int(keyLen)])
	offset += int(keyLen)
	return key, b.data[offset : offset+int(valLen)]
}

func (b *blockReader) readKeyAt(pos int) string {
	key, _ := b.fetchDataFor(pos)
	return key
}

// search returns the position of key, or numOffsets when it is absent.
func (b *blockReader) search(key string) int {
	low, high := 0, b.numOffsets
	for low < high {
		mid := (low + high) / 2
		switch c := strings.Compare(key, b.readKeyAt(mid)); {
		case c == 0:
			return mid
		case c > 0:
			low = mid + 1
		default:
			high = mid
		}
	}
	return b.numOffsets
}

// verify checks that every offset points at a complete entry inside the data
// section and that keys ascend strictly.
func (b *blockReader) verify() error {
	var prev string
	for pos := range b.numOffsets {
		offset := uint64(binary.LittleEndian.Uint32(b.offsets[pos*4:]))
		if offset >= uint64(len(b.data)) {
			return errors.Wrapf(ErrCorrupt, "entry %d: offset %d past data section", pos, offset)
		}
		keyLen, n := binary.Uvarint(b.data[offset:])
		if n <= 0 {
			return errors.Wrapf(ErrCorrupt, "entry %d: bad key length", pos)
		}
		offset += uint64(n)
		valLen, n := binary.Uvarint(b.data[offset:])
		if n <= 0 {
			return errors.Wrapf(ErrCorrupt, "entry %d: bad value length", pos)
		}
		offset += uint64(n)
		if keyLen > uint64(len(b.data)) || valLen > uint64(len(b.data)) ||
			offset+keyLen+valLen > uint64(len(b.data)) {
			return errors.Wrapf(ErrCorrupt, "entry %d: overruns data section", pos)
		}
		key := string(b.data[offset : offset+keyLen])
		if pos > 0 && key <= prev {
			return errors.Wrapf(ErrUnordered, "entry %d: %q after %q", pos, key, prev)
		}
		prev = key
	}
	return nil
}

package snapshot

import (
	"bytes"
	"encoding/binary"
)

const initialBlockSize = 4096

// blockWriter stages data entries and collects their offsets for the index
// block.
type blockWriter struct {
	buf        *bytes.Buffer
	offsets    []uint32
	nextOffset uint32
}

func newBlockWriter() *blockWriter {
	return &blockWriter{buf: bytes.NewBuffer(make([]byte, 0, initialBlockSize))}
}

// use byte slice as an in-mem staging area for the next entry
func (b *blockWriter) scratchBuf(needed int) []byte {
	if needed > b.buf.Available() {
		b.buf.Grow(needed)
	}
	return b.buf.AvailableBuffer()[:needed]
}

// add stages one entry: keyLen|valLen|key|val
func (b *blockWriter) add(key, val []byte) int {
	keyLen, valLen := len(key), len(val)
	buf := b.scratchBuf(2*binary.MaxVarintLen64 + keyLen + valLen)
	n := binary.PutUvarint(buf, uint64(keyLen))
	n += binary.PutUvarint(buf[n:], uint64(valLen))
	n += copy(buf[n:], key)
	n += copy(buf[n:], val)
	b.buf.Write(buf[:n])

	b.offsets = append(b.offsets, b.nextOffset)
	b.nextOffset += uint32(n)
	return n
}

// finish stages the index block followed by the footer.
func (b *blockWriter) finish() {
	count := len(b.offsets)
	needed := count*4 + footerSize
	buf := b.scratchBuf(needed)
	for i, offset := range b.offsets {
		binary.LittleEndian.PutUint32(buf[i*4:], offset)
	}
	binary.LittleEndian.PutUint32(buf[needed-8:], uint32(count))
	binary.LittleEndian.PutUint32(buf[needed-4:], uint32(count*4))
	b.buf.Write(buf)
}

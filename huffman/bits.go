package huffman

// bitWriter appends bits most significant first to buf.
type bitWriter struct {
	buf  []byte
	cur  byte
	used uint8 // bits held in cur
}

func (w *bitWriter) writeBit(bit byte) {
	w.cur = w.cur<<1 | bit
	w.used++
	if w.used == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.used = 0, 0
	}
}

func (w *bitWriter) writeByte(v byte) {
	if w.used == 0 {
		w.buf = append(w.buf, v)
		return
	}
	for i := 7; i >= 0; i-- {
		w.writeBit(v >> i & 1)
	}
}

func (w *bitWriter) writeCode(c Code) {
	for _, bit := range c {
		w.writeBit(bit)
	}
}

// finish flushes the partial byte, padding it with zero bits, and returns
// the buffer with the number of padding bits.
func (w *bitWriter) finish() ([]byte, uint8) {
	if w.used == 0 {
		return w.buf, 0
	}
	pad := 8 - w.used
	w.buf = append(w.buf, w.cur<<pad)
	w.cur, w.used = 0, 0
	return w.buf, pad
}

// bitReader reads the first limit bits of data.
type bitReader struct {
	data  []byte
	pos   uint64
	limit uint64
}

func newBitReader(data []byte, pad uint8) *bitReader {
	return &bitReader{data: data, limit: uint64(len(data))*8 - uint64(pad)}
}

func (r *bitReader) remaining() uint64 {
	return r.limit - r.pos
}

func (r *bitReader) readBit() (byte, bool) {
	if r.pos >= r.limit {
		return 0, false
	}
	bit := r.data[r.pos>>3] >> (7 - r.pos&7) & 1
	r.pos++
	return bit, true
}

func (r *bitReader) readByte() (byte, bool) {
	if r.remaining() < 8 {
		return 0, false
	}
	var v byte
	for range 8 {
		bit, _ := r.readBit()
		v = v<<1 | bit
	}
	return v, true
}

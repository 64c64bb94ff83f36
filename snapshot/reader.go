package snapshot

import (
	"bytes"
	"encoding/binary"
	"io"
	"iter"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"filevault/codec"
	"filevault/metadata"
)

// Reader gives random and ordered access to a snapshot held in memory.
type Reader struct {
	header Header
	block  blockReader
}

// NewReader reads a whole snapshot from file and verifies its checksum and
// structure before returning.
func NewReader(file io.Reader) (*Reader, error) {
	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: read")
	}
	return parse(buf)
}

// ReadFile opens the snapshot stored at path.
func ReadFile(path string) (*Reader, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(buf)
}

func parse(buf []byte) (*Reader, error) {
	if len(buf) < headerSize+footerSize+checksumSize {
		return nil, errors.Wrapf(ErrCorrupt, "%d bytes is shorter than an empty snapshot", len(buf))
	}
	body, sum := buf[:len(buf)-checksumSize], buf[len(buf)-checksumSize:]
	if want := blake3.Sum256(body); !bytes.Equal(sum, want[:]) {
		return nil, ErrChecksum
	}
	if string(body[:4]) != magic {
		return nil, errors.Wrapf(ErrCorrupt, "bad magic %q", body[:4])
	}
	r := &Reader{header: Header{
		Version: body[4],
		Kind:    Kind(body[5]),
		Degree:  binary.LittleEndian.Uint16(body[6:]),
	}}
	if r.header.Version != version {
		return nil, errors.Wrapf(ErrCorrupt, "unsupported version %d", r.header.Version)
	}
	r.header.ID, _ = uuid.FromBytes(body[8:headerSize])

	footer := body[len(body)-footerSize:]
	count := uint64(binary.LittleEndian.Uint32(footer))
	indexLen := uint64(binary.LittleEndian.Uint32(footer[4:]))
	if indexLen != count*4 || indexLen > uint64(len(body)-headerSize-footerSize) {
		return nil, errors.Wrapf(ErrCorrupt, "footer declares %d entries in %d index bytes", count, indexLen)
	}
	indexStart := len(body) - footerSize - int(indexLen)
	r.block = blockReader{
		data:       body[headerSize:indexStart],
		offsets:    body[indexStart : len(body)-footerSize],
		numOffsets: int(count),
	}
	if err := r.block.verify(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) Header() Header {
	return r.header
}

// Len is the number of records.
func (r *Reader) Len() int {
	return r.block.numOffsets
}

// Get returns the record stored under filename.
func (r *Reader) Get(filename string) (metadata.Record, bool, error) {
	pos := r.block.search(filename)
	if pos == r.block.numOffsets {
		return metadata.Record{}, false, nil
	}
	rec, err := r.decode(pos)
	return rec, err == nil, err
}

// All yields the records in ascending filename order, stopping after the
// first decode error.
func (r *Reader) All() iter.Seq2[metadata.Record, error] {
	return func(yield func(metadata.Record, error) bool) {
		for pos := range r.block.numOffsets {
			rec, err := r.decode(pos)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) decode(pos int) (metadata.Record, error) {
	key, val := r.block.fetchDataFor(pos)
	var rec metadata.Record
	if err := codec.Unmarshal(val, &rec); err != nil {
		return metadata.Record{}, errors.Wrapf(ErrCorrupt, "entry %q: %v", key, err)
	}
	if rec.Filename != key {
		return metadata.Record{}, errors.Wrapf(ErrCorrupt, "entry %q holds record %q", key, rec.Filename)
	}
	return rec, nil
}

package snapshot

import (
	"bufio"
	"encoding/binary"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"filevault/codec"
	"filevault/metadata"
)

// 2 methods -- `Close() error` and `Sync() error`
type syncCloser interface {
	io.Closer
	Sync() error
}

// Writer streams records into a snapshot. Records must be added in strictly
// ascending filename order; nothing is valid on disk until Close returns.
type Writer struct {
	file   io.Writer
	bw     *bufio.Writer
	hash   *blake3.Hasher
	block  *blockWriter
	header Header
	last   string
	count  int
	err    error
}

// NewWriter writes the snapshot header to file. A zero h.ID is replaced by
// a fresh random UUID.
func NewWriter(file io.Writer, h Header) (*Writer, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.Version = version
	w := &Writer{file: file, hash: blake3.New(), block: newBlockWriter(), header: h}
	w.bw = bufio.NewWriter(io.MultiWriter(file, w.hash))

	var hdr [headerSize]byte
	copy(hdr[:4], magic)
	hdr[4] = h.Version
	hdr[5] = byte(h.Kind)
	binary.LittleEndian.PutUint16(hdr[6:], h.Degree)
	copy(hdr[8:], h.ID[:])
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return nil, errors.Wrap(err, "snapshot: write header")
	}
	return w, nil
}

// Header returns the header as written, including the generated ID.
func (w *Writer) Header() Header {
	return w.header
}

// Add appends rec. It fails with ErrUnordered unless rec.Filename sorts
// after every filename added before it.
func (w *Writer) Add(rec metadata.Record) error {
	if w.err != nil {
		return w.err
	}
	if w.count > 0 && rec.Filename <= w.last {
		return errors.Wrapf(ErrUnordered, "%q after %q", rec.Filename, w.last)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	val, err := codec.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "snapshot: encode %q", rec.Filename)
	}
	if uint64(w.block.nextOffset)+uint64(len(val)+len(rec.Filename))+2*binary.MaxVarintLen64 > math.MaxUint32 {
		return errors.Newf("snapshot: data section exceeds 4 GiB at %q", rec.Filename)
	}

	w.block.add([]byte(rec.Filename), val)
	if _, err := w.bw.ReadFrom(w.block.buf); err != nil {
		w.err = errors.Wrap(err, "snapshot: write entry")
		return w.err
	}
	w.last = rec.Filename
	w.count++
	return nil
}

// Close writes the index block, footer and checksum, flushes, and syncs and
// closes the underlying file when it supports that.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	w.block.finish()
	if _, err := w.bw.ReadFrom(w.block.buf); err != nil {
		return errors.Wrap(err, "snapshot: write index")
	}
	if err := w.bw.Flush(); err != nil {
		return errors.Wrap(err, "snapshot: flush")
	}
	if _, err := w.file.Write(w.hash.Sum(nil)); err != nil {
		return errors.Wrap(err, "snapshot: write checksum")
	}
	w.err = errors.New("snapshot: writer closed")

	if f, ok := w.file.(syncCloser); ok {
		if err := f.Sync(); err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}

// WriteFile stores records under path. The snapshot is written to a
// temporary file in the same directory and renamed into place, so path
// always holds either the previous snapshot or the complete new one.
func WriteFile(path string, h Header, records iter.Seq[metadata.Record]) (Header, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return Header{}, errors.Wrap(err, "snapshot: create")
	}
	abort := func(err error) (Header, error) {
		f.Close()
		os.Remove(f.Name())
		return Header{}, err
	}

	w, err := NewWriter(f, h)
	if err != nil {
		return abort(err)
	}
	for rec := range records {
		if err := w.Add(rec); err != nil {
			return abort(err)
		}
	}
	if err := w.Close(); err != nil {
		return abort(err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return Header{}, errors.Wrap(err, "snapshot: rename")
	}
	return w.Header(), nil
}

// Package metadata holds the file metadata record shared by the B-Tree and
// Red-Black tree indexes. A record is a plain value: every index keeps its own
// copy, so mutating a record obtained from one index never affects another.
package metadata

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// Record describes one file. Filename is the index key and must be unique
// within a given index.
type Record struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Compressed bool      `json:"compressed"`
	// Ratio is the space saving of the compressed artifact in percent,
	// (1 - compressed/original) * 100. Zero for uncompressed files.
	Ratio      float64  `json:"ratio"`
	Categories []string `json:"categories,omitempty"`
	// Digest is the hex BLAKE3-256 of the original (uncompressed) bytes.
	Digest string `json:"digest,omitempty"`
}

// ErrInvalidRecord is the sentinel wrapped by Validate failures.
var ErrInvalidRecord = errors.New("invalid metadata record")

// New returns a record for filename stamped with the current time.
func New(filename, path string, size int64) Record {
	now := time.Now().UTC()
	return Record{
		Filename:   filename,
		Path:       path,
		Size:       size,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Validate rejects records that cannot be indexed. A negative ratio is legal:
// Huffman output for tiny inputs is larger than the input.
func (r Record) Validate() error {
	switch {
	case r.Filename == "":
		return errors.Wrap(ErrInvalidRecord, "empty filename")
	case r.Size < 0:
		return errors.Wrapf(ErrInvalidRecord, "%s: negative size %d", r.Filename, r.Size)
	case math.IsNaN(r.Ratio):
		return errors.Wrapf(ErrInvalidRecord, "%s: ratio is NaN", r.Filename)
	}
	return nil
}

// Equal reports whether two records carry identical metadata. Times are
// compared with time.Time.Equal so records that went through a serialization
// round trip still compare equal.
func (r Record) Equal(o Record) bool {
	return r.Filename == o.Filename &&
		r.Path == o.Path &&
		r.Size == o.Size &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.ModifiedAt.Equal(o.ModifiedAt) &&
		r.Compressed == o.Compressed &&
		r.Ratio == o.Ratio &&
		slices.Equal(r.Categories, o.Categories) &&
		r.Digest == o.Digest
}

func (r Record) HasCategory(category string) bool {
	return slices.Contains(r.Categories, category)
}

// Clone returns a deep copy, so the categories slice is not shared.
func (r Record) Clone() Record {
	r.Categories = slices.Clone(r.Categories)
	return r
}

func (r Record) String() string {
	status := "raw"
	if r.Compressed {
		status = fmt.Sprintf("compressed %.2f%%", r.Ratio)
	}
	return fmt.Sprintf("%s (%s, %d bytes, %s)", r.Filename, r.Path, r.Size, status)
}

/*
Package snapshot persists the contents of an index to a single file and
reads it back. A snapshot is a sorted string table:

	header   magic "FVSN" | version (1B) | index kind (1B) | degree (2B) | id (16B)
	data     uvarint keyLen | uvarint valLen | filename | cbor(record)   (one per record)
	index    entry offset (4B each, relative to the start of the data section)
	footer   entry count (4B) | index block length (4B)
	checksum BLAKE3-256 of every preceding byte (32B)

Multi-byte integers are little-endian. Entries are in strictly ascending
filename order, so lookups binary search the index block.
*/
package snapshot

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	magic        = "FVSN"
	version      = 1
	headerSize   = 24
	footerSize   = 8
	checksumSize = 32
)

var (
	ErrChecksum  = errors.New("snapshot: checksum mismatch")
	ErrCorrupt   = errors.New("snapshot: corrupt file")
	ErrUnordered = errors.New("snapshot: records out of order")
)

// Kind names the index a snapshot was taken from.
type Kind uint8

const (
	KindBTree Kind = iota + 1
	KindRBTree
)

func (k Kind) String() string {
	switch k {
	case KindBTree:
		return "btree"
	case KindRBTree:
		return "rbtree"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Header identifies a snapshot. Degree is only meaningful for B-Tree
// snapshots.
type Header struct {
	Version uint8
	Kind    Kind
	Degree  uint16
	ID      uuid.UUID
}

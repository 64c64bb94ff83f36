package btree

import (
	"iter"

	"filevault/metadata"
)

// Cursor walks records in ascending filename order. It is lazy: each step
// takes the read lock, seeks past the last key it returned and releases the
// lock before handing the record over, so a caller may stop at any point and
// may mutate the tree between steps. A cursor cannot be rewound.
type Cursor struct {
	t       *Btree
	lo, hi  string
	bounded bool // hi applies
	last    string
	started bool
	done    bool
	rec     metadata.Record
}

// RangeQuery returns a cursor over the records whose filenames fall in
// [lo, hi].
func (t *Btree) RangeQuery(lo, hi string) *Cursor {
	return &Cursor{t: t, lo: lo, hi: hi, bounded: true, done: lo > hi}
}

// Ascend returns a cursor over every record.
func (t *Btree) Ascend() *Cursor {
	return &Cursor{t: t}
}

// Next advances to the next record and reports whether there is one.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	c.t.mu.RLock()
	var it *item
	if c.started {
		it = c.t.ceiling(c.last, false)
	} else {
		it = c.t.ceiling(c.lo, true)
	}
	if it != nil && (!c.bounded || it.key <= c.hi) {
		c.rec = it.rec.Clone()
	} else {
		it = nil
	}
	c.t.mu.RUnlock()

	if it == nil {
		c.done = true
		c.rec = metadata.Record{}
		return false
	}
	c.started = true
	c.last = it.key
	return true
}

// Record is the record the last successful Next stopped at.
func (c *Cursor) Record() metadata.Record {
	return c.rec
}

// All drains the rest of the cursor as an iterator.
func (c *Cursor) All() iter.Seq[metadata.Record] {
	return func(yield func(metadata.Record) bool) {
		for c.Next() {
			if !yield(c.Record()) {
				return
			}
		}
	}
}

// All iterates over every record in ascending order.
func (t *Btree) All() iter.Seq[metadata.Record] {
	return t.Ascend().All()
}

// ceiling returns the smallest item with a key >= key (inclusive) or > key.
func (t *Btree) ceiling(key string, inclusive bool) *item {
	var best *item
	for n := t.root; n != nil; {
		pos, found := n.search(key)
		if found {
			if inclusive {
				return n.items[pos]
			}
			pos++
		}
		if pos < len(n.items) {
			best = n.items[pos]
		}
		if n.isLeaf() {
			break
		}
		n = n.children[pos]
	}
	return best
}

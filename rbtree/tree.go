// Package rbtree is a Red-Black tree index of file metadata records keyed by
// filename.
//
// Nodes live in an arena and refer to each other by integer handle, so the
// parent links used during rebalancing never form owning cycles. Freed slots
// are reused by later inserts.
package rbtree

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"filevault/metadata"
)

// Tree is safe for concurrent use: mutations are exclusive, lookups shared.
type Tree struct {
	mu    sync.RWMutex
	nodes []node
	free  []handle
	root  handle
	size  int
}

func New() *Tree {
	return &Tree{nodes: []node{{color: black}}}
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Height is the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.height(t.root)
}

func (t *Tree) height(h handle) int {
	if h == sentinel {
		return 0
	}
	return 1 + max(t.height(t.nodes[h].left), t.height(t.nodes[h].right))
}

// Clear drops every record and releases the arena.
func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = []node{{color: black}}
	t.free = nil
	t.root = sentinel
	t.size = 0
}

func (t *Tree) String() string {
	return fmt.Sprintf("rbtree(records=%d, height=%d)", t.Len(), t.Height())
}

func (t *Tree) lookup(key string) handle {
	x := t.root
	for x != sentinel {
		switch c := strings.Compare(key, t.nodes[x].key); {
		case c < 0:
			x = t.nodes[x].left
		case c > 0:
			x = t.nodes[x].right
		default:
			return x
		}
	}
	return sentinel
}

// Search returns the record stored under filename.
func (t *Tree) Search(filename string) (metadata.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if x := t.lookup(filename); x != sentinel {
		return t.nodes[x].rec.Clone(), true
	}
	return metadata.Record{}, false
}

// Find is Search for callers that treat a miss as an error.
func (t *Tree) Find(filename string) (metadata.Record, error) {
	rec, ok := t.Search(filename)
	if !ok {
		return metadata.Record{}, &metadata.KeyNotFoundError{Index: "rbtree", Filename: filename}
	}
	return rec, nil
}

// Update applies fn to the record stored under filename. The filename
// itself cannot be changed this way.
func (t *Tree) Update(filename string, fn func(*metadata.Record)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	x := t.lookup(filename)
	if x == sentinel {
		return &metadata.KeyNotFoundError{Index: "rbtree", Filename: filename}
	}
	rec := t.nodes[x].rec.Clone()
	fn(&rec)
	rec.Filename = filename
	if err := rec.Validate(); err != nil {
		return err
	}
	t.nodes[x].rec = rec
	return nil
}

func (t *Tree) alloc(rec metadata.Record, parent handle) handle {
	n := node{key: rec.Filename, rec: rec, color: red, parent: parent}
	if len(t.free) > 0 {
		h := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[h] = n
		return h
	}
	t.nodes = append(t.nodes, n)
	return handle(len(t.nodes) - 1)
}

func (t *Tree) release(h handle) {
	t.nodes[h] = node{}
	t.free = append(t.free, h)
}

// Insert adds rec under rec.Filename and reports whether the key is new. An
// existing key has its record replaced without touching the tree shape.
func (t *Tree) Insert(rec metadata.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	rec = rec.Clone()

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, x := sentinel, t.root
	for x != sentinel {
		parent = x
		switch c := strings.Compare(rec.Filename, t.nodes[x].key); {
		case c < 0:
			x = t.nodes[x].left
		case c > 0:
			x = t.nodes[x].right
		default:
			t.nodes[x].rec = rec
			return false, nil
		}
	}

	z := t.alloc(rec, parent)
	switch {
	case parent == sentinel:
		t.root = z
	case rec.Filename < t.nodes[parent].key:
		t.nodes[parent].left = z
	default:
		t.nodes[parent].right = z
	}
	t.size++
	t.insertFixup(z)
	return true, nil
}

// Delete removes filename and reports whether it was present. A node with
// two children is replaced by its in-order successor.
func (t *Tree) Delete(filename string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	z := t.lookup(filename)
	if z == sentinel {
		return false
	}

	y, yColor := z, t.nodes[z].color
	var x handle
	switch {
	case t.nodes[z].left == sentinel:
		x = t.nodes[z].right
		t.transplant(z, x)
	case t.nodes[z].right == sentinel:
		x = t.nodes[z].left
		t.transplant(z, x)
	default:
		y = t.minimum(t.nodes[z].right)
		yColor = t.nodes[y].color
		x = t.nodes[y].right
		if t.nodes[y].parent == z {
			// x may be the sentinel; fixup climbs from its parent
			t.nodes[x].parent = y
		} else {
			t.transplant(y, x)
			t.nodes[y].right = t.nodes[z].right
			t.nodes[t.nodes[y].right].parent = y
		}
		t.transplant(z, y)
		t.nodes[y].left = t.nodes[z].left
		t.nodes[t.nodes[y].left].parent = y
		t.nodes[y].color = t.nodes[z].color
	}
	t.release(z)
	t.size--

	if yColor == black {
		t.deleteFixup(x)
	}
	t.nodes[t.root].color = black
	t.nodes[sentinel].parent = sentinel
	return true
}

// transplant puts v where u hangs from u's parent.
func (t *Tree) transplant(u, v handle) {
	p := t.nodes[u].parent
	switch {
	case p == sentinel:
		t.root = v
	case u == t.nodes[p].left:
		t.nodes[p].left = v
	default:
		t.nodes[p].right = v
	}
	t.nodes[v].parent = p
}

func (t *Tree) minimum(x handle) handle {
	for t.nodes[x].left != sentinel {
		x = t.nodes[x].left
	}
	return x
}

// All iterates over every record in ascending order.
func (t *Tree) All() iter.Seq[metadata.Record] {
	return t.walk("", "", false)
}

// Range iterates over the records whose filenames fall in [lo, hi].
func (t *Tree) Range(lo, hi string) iter.Seq[metadata.Record] {
	if lo > hi {
		return func(func(metadata.Record) bool) {}
	}
	return t.walk(lo, hi, true)
}

// walk seeks from the previous key under the read lock on every step, so
// iteration is lazy and the tree may be changed between steps.
func (t *Tree) walk(lo, hi string, bounded bool) iter.Seq[metadata.Record] {
	return func(yield func(metadata.Record) bool) {
		last, started := lo, false
		for {
			t.mu.RLock()
			x := t.ceiling(last, !started)
			if x != sentinel && bounded && t.nodes[x].key > hi {
				x = sentinel
			}
			var rec metadata.Record
			if x != sentinel {
				rec = t.nodes[x].rec.Clone()
				last = t.nodes[x].key
			}
			t.mu.RUnlock()

			if x == sentinel || !yield(rec) {
				return
			}
			started = true
		}
	}
}

// ceiling returns the node with the smallest key >= key (inclusive) or > key.
func (t *Tree) ceiling(key string, inclusive bool) handle {
	best := sentinel
	for x := t.root; x != sentinel; {
		c := strings.Compare(key, t.nodes[x].key)
		if c < 0 || (c == 0 && inclusive) {
			if c == 0 {
				return x
			}
			best = x
			x = t.nodes[x].left
		} else {
			x = t.nodes[x].right
		}
	}
	return best
}

package btree

import (
	"fmt"
	"sync"

	"filevault/metadata"
)

/*
Btree only keeps a pointer to root node of the tree.
A tree is made up of nodes. Each node contains data items.
One writer at a time: mutations hold mu exclusively, lookups share it.
*/
type Btree struct {
	mu     sync.RWMutex
	root   *node
	degree int
	size   int
}

// frame records the node visited at each level of a descent and the child
// index taken from it.
type frame struct {
	n   *node
	pos int
}

// New returns an empty tree whose nodes have at most degree children.
func New(degree int) (*Btree, error) {
	if degree < 2 {
		return nil, &DegreeConfigError{Degree: degree}
	}
	return &Btree{degree: max(degree, minDegree)}, nil
}

// Degree is the maximum number of children per node.
func (t *Btree) Degree() int {
	return t.degree
}

func (t *Btree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Height is the number of levels, 0 for an empty tree.
func (t *Btree) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h := 0
	for n := t.root; n != nil; h++ {
		if n.isLeaf() {
			return h + 1
		}
		n = n.children[0]
	}
	return h
}

// Clear drops every record.
func (t *Btree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = nil
	t.size = 0
}

func (t *Btree) String() string {
	return fmt.Sprintf("btree(degree=%d, records=%d, height=%d)", t.Degree(), t.Len(), t.Height())
}

// Search returns the record stored under filename.
func (t *Btree) Search(filename string) (metadata.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if it := t.find(filename); it != nil {
		return it.rec.Clone(), true
	}
	return metadata.Record{}, false
}

// Find is Search for callers that treat a miss as an error.
func (t *Btree) Find(filename string) (metadata.Record, error) {
	rec, ok := t.Search(filename)
	if !ok {
		return metadata.Record{}, &metadata.KeyNotFoundError{Index: "btree", Filename: filename}
	}
	return rec, nil
}

// Update applies fn to the record stored under filename. Changes to the
// filename are ignored.
func (t *Btree) Update(filename string, fn func(*metadata.Record)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	it := t.find(filename)
	if it == nil {
		return &metadata.KeyNotFoundError{Index: "btree", Filename: filename}
	}
	rec := it.rec.Clone()
	fn(&rec)
	rec.Filename = filename
	if err := rec.Validate(); err != nil {
		return err
	}
	it.rec = rec
	return nil
}

// Searching the entire tree.
func (t *Btree) find(key string) *item {
	for next := t.root; next != nil; {
		pos, found := next.search(key)
		if found {
			return next.items[pos]
		}
		if next.isLeaf() {
			return nil
		}
		next = next.children[pos]
	}
	return nil
}

/*
Insert adds rec under rec.Filename and reports whether the key is new. An existing key
has its record replaced in place.
The item goes into the leaf where the descent ends. A leaf that reaches degree items is
split, its median moving to the parent, and the split repeats upward along the recorded
path. When the root splits a new root is created and the tree grows by one level.
*/
func (t *Btree) Insert(rec metadata.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	it := &item{key: rec.Filename, rec: rec.Clone()}

	t.mu.Lock()
	defer t.mu.Unlock()

	// The tree is empty, so initialize a new node.
	if t.root == nil {
		t.root = &node{items: []*item{it}}
		t.size++
		return true, nil
	}

	var path []frame
	n := t.root
	for {
		pos, found := n.search(it.key)
		// The data item already exists, so just update its value.
		if found {
			n.items[pos] = it
			return false, nil
		}
		if n.isLeaf() {
			n.insertItemAt(pos, it)
			break
		}
		path = append(path, frame{n, pos})
		n = n.children[pos]
	}
	t.size++

	for len(n.items) > maxItems(t.degree) {
		midItem, sibling := n.split()
		if len(path) == 0 {
			t.root = &node{
				items:    []*item{midItem},
				children: []*node{n, sibling},
			}
			break
		}
		parent := path[len(path)-1]
		path = path[:len(path)-1]
		parent.n.insertItemAt(parent.pos, midItem)
		parent.n.insertChildAt(parent.pos+1, sibling)
		n = parent.n
	}
	return true, nil
}

/*
Delete removes filename and reports whether it was present.
An item in an internal node is replaced by its in-order predecessor, which always sits in
a leaf, so the removal itself happens in a leaf. A node left with fewer than
ceil(degree/2)-1 items then borrows through the parent from an adjacent sibling, or merges
with one and pulls the separator down, and the check repeats on the parent. An emptied
root is replaced by its only child.
*/
func (t *Btree) Delete(filename string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	var path []frame
	n := t.root
	pos := 0
	for n != nil {
		var found bool
		pos, found = n.search(filename)
		if found {
			break
		}
		if n.isLeaf() {
			return false
		}
		path = append(path, frame{n, pos})
		n = n.children[pos]
	}
	if n == nil {
		return false
	}

	if n.isLeaf() {
		n.removeItemAt(pos)
	} else {
		// descend to the predecessor, recording the path for rebalancing
		path = append(path, frame{n, pos})
		leaf := n.children[pos]
		for !leaf.isLeaf() {
			last := len(leaf.children) - 1
			path = append(path, frame{leaf, last})
			leaf = leaf.children[last]
		}
		n.items[pos] = leaf.removeItemAt(len(leaf.items) - 1)
		n = leaf
	}
	t.size--

	t.rebalance(n, path)

	if len(t.root.items) == 0 {
		if t.root.isLeaf() {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
	}
	return true
}

// rebalance restores the minimum occupancy of n and, as merges take items
// from parents, of every ancestor on path.
func (t *Btree) rebalance(n *node, path []frame) {
	minimum := minItems(t.degree)
	for len(path) > 0 && len(n.items) < minimum {
		parent := path[len(path)-1]
		path = path[:len(path)-1]
		p, i := parent.n, parent.pos

		switch {
		case i > 0 && len(p.children[i-1].items) > minimum:
			// rotate right: separator comes down, left sibling's last item goes up
			left := p.children[i-1]
			n.insertItemAt(0, p.items[i-1])
			p.items[i-1] = left.removeItemAt(len(left.items) - 1)
			if !left.isLeaf() {
				n.insertChildAt(0, left.removeChildAt(len(left.children)-1))
			}

		case i < len(p.children)-1 && len(p.children[i+1].items) > minimum:
			// rotate left: separator comes down, right sibling's first item goes up
			right := p.children[i+1]
			n.items = append(n.items, p.items[i])
			p.items[i] = right.removeItemAt(0)
			if !right.isLeaf() {
				n.children = append(n.children, right.removeChildAt(0))
			}

		default:
			// merge the pair around separator s into the left one
			s := i
			if i > 0 {
				s = i - 1
			}
			left, right := p.children[s], p.children[s+1]
			left.items = append(left.items, p.removeItemAt(s))
			left.items = append(left.items, right.items...)
			left.children = append(left.children, right.children...)
			p.removeChildAt(s + 1)
		}
		n = p
	}
}

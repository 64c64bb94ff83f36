package btree

import "strings"

type node struct {
	// slices rather than the fixed arrays of a compile-time degree: the
	// degree is chosen when the tree is created
	items    []*item
	children []*node
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

/*
If data item with key k is found in node n, return its index i.
Else, return the index j where the key would have resided if it was present in the node.
Basically, lower bound of the key in the node -- this coincides with position of the child pointer !!
So, we can continue the traversal down the tree if the returned boolean value is false.
*/
func (n *node) search(key string) (int, bool) {
	low, high := 0, len(n.items)
	for low < high {
		mid := int(uint(low+high) >> 1)
		switch cmp := strings.Compare(key, n.items[mid].key); {
		case cmp > 0:
			low = mid + 1
		case cmp < 0:
			high = mid
		default:
			return mid, true
		}
	}
	return low, false
}

// helper method to insert data item at an arbitrary position of a B-tree node
func (n *node) insertItemAt(pos int, it *item) {
	n.items = append(n.items, nil)
	copy(n.items[pos+1:], n.items[pos:])
	n.items[pos] = it
}

// helper method to insert child pointer at an arbitrary position of a B-tree node
func (n *node) insertChildAt(pos int, child *node) {
	n.children = append(n.children, nil)
	copy(n.children[pos+1:], n.children[pos:])
	n.children[pos] = child
}

func (n *node) removeItemAt(pos int) *item {
	it := n.items[pos]
	copy(n.items[pos:], n.items[pos+1:])
	n.items[len(n.items)-1] = nil
	n.items = n.items[:len(n.items)-1]
	return it
}

func (n *node) removeChildAt(pos int) *node {
	child := n.children[pos]
	copy(n.children[pos:], n.children[pos+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	return child
}

/*
split is called on a node that overflowed (it holds degree items).
The median item moves up to the parent, the items and children after it move to a new
right sibling, and n keeps the rest. split returns the median and the new sibling so the
caller can link them into the parent.
*/
func (n *node) split() (*item, *node) {
	mid := len(n.items) / 2
	midItem := n.items[mid]

	sibling := &node{items: append([]*item(nil), n.items[mid+1:]...)}
	clear(n.items[mid:])
	n.items = n.items[:mid]

	if !n.isLeaf() {
		sibling.children = append([]*node(nil), n.children[mid+1:]...)
		clear(n.children[mid+1:])
		n.children = n.children[:mid+1]
	}
	return midItem, sibling
}

// rightmost leaf of the subtree rooted at n
func (n *node) max() *node {
	for !n.isLeaf() {
		n = n.children[len(n.children)-1]
	}
	return n
}

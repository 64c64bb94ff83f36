package huffman

import (
	"container/heap"
	"fmt"
	"strings"
)

// Node is a Huffman tree node. A leaf has no children and carries Symbol; an
// internal node always has both children. A node owns its children and a
// tree is never shared between calls.
type Node struct {
	Symbol      byte
	Weight      uint64
	Left, Right *Node

	// smallest symbol in this subtree, used to order equal weights
	lowest byte
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// BuildTree builds the prefix tree for freq. It returns nil for an empty
// table and a lone leaf when only one symbol occurs.
//
// Equal weights are ordered by the smallest symbol they contain, so the same
// table always yields the same tree. The first node taken from the queue
// becomes the left child.
func BuildTree(freq FrequencyTable) *Node {
	if len(freq) == 0 {
		return nil
	}
	h := make(nodeHeap, 0, len(freq))
	for _, sym := range freq.Symbols() {
		h = append(h, &Node{Symbol: sym, Weight: freq[sym], lowest: sym})
	}
	heap.Init(&h)
	for h.Len() > 1 {
		left := heap.Pop(&h).(*Node)
		right := heap.Pop(&h).(*Node)
		heap.Push(&h, &Node{
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			lowest: min(left.lowest, right.lowest),
		})
	}
	return h[0]
}

// priority queue of subtrees, lowest weight first
type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].lowest < h[j].lowest
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*Node))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// String draws the tree sideways, one node per line. Trees rebuilt by Decode
// carry no weights, so their nodes print a zero weight.
func (n *Node) String() string {
	if n == nil {
		return "(empty)"
	}
	var b strings.Builder
	n.draw(&b, "", true)
	return strings.TrimSuffix(b.String(), "\n")
}

func (n *Node) draw(b *strings.Builder, prefix string, left bool) {
	branch := "┌── "
	next := prefix + "│   "
	if left {
		branch = "└── "
		next = prefix + "    "
	}
	if n.IsLeaf() {
		fmt.Fprintf(b, "%s%s%s (%d)\n", prefix, branch, symbolName(n.Symbol), n.Weight)
		return
	}
	fmt.Fprintf(b, "%s%s* (%d)\n", prefix, branch, n.Weight)
	n.Left.draw(b, next, true)
	n.Right.draw(b, next, false)
}

// symbolName quotes printable ASCII and shows everything else in hex.
func symbolName(sym byte) string {
	if sym >= 0x21 && sym <= 0x7e {
		return fmt.Sprintf("'%c'", sym)
	}
	return fmt.Sprintf("0x%02x", sym)
}

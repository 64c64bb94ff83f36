package huffman

import (
	"fmt"
	"strings"
)

// Code is the bit sequence of one symbol, one element per bit (0 or 1),
// most significant first.
type Code []byte

func (c Code) String() string {
	var b strings.Builder
	for _, bit := range c {
		b.WriteByte('0' + bit)
	}
	return b.String()
}

// CodeTable maps every symbol of a tree to its code.
type CodeTable map[byte]Code

// NewCodeTable walks root, appending 0 for a left edge and 1 for a right
// edge. A tree made of a single leaf gets the code "0".
func NewCodeTable(root *Node) CodeTable {
	codes := make(CodeTable)
	if root == nil {
		return codes
	}
	if root.IsLeaf() {
		codes[root.Symbol] = Code{0}
		return codes
	}
	type frame struct {
		node *Node
		code Code
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.IsLeaf() {
			codes[f.node.Symbol] = f.code
			continue
		}
		// full slice expressions force a copy so siblings never share storage
		right := append(f.code[:len(f.code):len(f.code)], 1)
		left := append(f.code[:len(f.code):len(f.code)], 0)
		stack = append(stack, frame{f.node.Right, right}, frame{f.node.Left, left})
	}
	return codes
}

// String lists the codes by ascending symbol.
func (t CodeTable) String() string {
	var b strings.Builder
	for sym := 0; sym < 256; sym++ {
		if code, ok := t[byte(sym)]; ok {
			fmt.Fprintf(&b, "%-6s %s\n", symbolName(byte(sym)), code)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

package btree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Visualizer renders a tree level by level, one line per level, with the
// nodes of a level separated by spaces.
type Visualizer struct {
	Tree *Btree
}

var keyColor = color.New(color.FgCyan)

func (v *Visualizer) Visualize() string {
	v.Tree.mu.RLock()
	defer v.Tree.mu.RUnlock()

	if v.Tree.root == nil {
		return "(empty)"
	}
	var b strings.Builder
	level := []*node{v.Tree.root}
	for depth := 0; len(level) > 0; depth++ {
		var next []*node
		fmt.Fprintf(&b, "L%d:", depth)
		for _, n := range level {
			keys := make([]string, len(n.items))
			for i, it := range n.items {
				keys[i] = keyColor.Sprint(it.key)
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(keys, " | "))
			next = append(next, n.children...)
		}
		b.WriteByte('\n')
		level = next
	}
	return strings.TrimSuffix(b.String(), "\n")
}

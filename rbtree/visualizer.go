package rbtree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	redKey   = color.New(color.FgRed, color.Bold)
	blackKey = color.New(color.FgHiBlack, color.Bold)
)

// Visualizer draws the tree sideways, one node per line, each key tagged
// with its color.
type Visualizer struct {
	Tree *Tree
}

func (v *Visualizer) Visualize() string {
	t := v.Tree
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.root == sentinel {
		return "(empty)"
	}
	var b strings.Builder
	t.draw(&b, t.root, "", true)
	return strings.TrimSuffix(b.String(), "\n")
}

func (t *Tree) draw(b *strings.Builder, h handle, prefix string, last bool) {
	n := t.nodes[h]
	branch, next := "├── ", prefix+"│   "
	if last {
		branch, next = "└── ", prefix+"    "
	}
	paint := blackKey
	if n.color == red {
		paint = redKey
	}
	fmt.Fprintf(b, "%s%s%s (%s)\n", prefix, branch, paint.Sprint(n.key), n.color)

	var children []handle
	for _, c := range []handle{n.left, n.right} {
		if c != sentinel {
			children = append(children, c)
		}
	}
	for i, c := range children {
		t.draw(b, c, next, i == len(children)-1)
	}
}

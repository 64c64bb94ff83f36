package rbtree

func (t *Tree) rotateLeft(x handle) {
	y := t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	if t.nodes[y].left != sentinel {
		t.nodes[t.nodes[y].left].parent = x
	}
	t.transplant(x, y)
	t.nodes[y].left = x
	t.nodes[x].parent = y
}

func (t *Tree) rotateRight(x handle) {
	y := t.nodes[x].left
	t.nodes[x].left = t.nodes[y].right
	if t.nodes[y].right != sentinel {
		t.nodes[t.nodes[y].right].parent = x
	}
	t.transplant(x, y)
	t.nodes[y].right = x
	t.nodes[x].parent = y
}

// insertFixup restores the red-black rules after z was linked in red. A red
// uncle is handled by recoloring and moving up two levels; a black uncle ends
// the loop after at most two rotations.
func (t *Tree) insertFixup(z handle) {
	for t.nodes[t.nodes[z].parent].color == red {
		p := t.nodes[z].parent
		g := t.nodes[p].parent
		if p == t.nodes[g].left {
			u := t.nodes[g].right
			if t.nodes[u].color == red {
				t.nodes[p].color = black
				t.nodes[u].color = black
				t.nodes[g].color = red
				z = g
				continue
			}
			if z == t.nodes[p].right {
				z = p
				t.rotateLeft(z)
				p = t.nodes[z].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateRight(g)
		} else {
			u := t.nodes[g].left
			if t.nodes[u].color == red {
				t.nodes[p].color = black
				t.nodes[u].color = black
				t.nodes[g].color = red
				z = g
				continue
			}
			if z == t.nodes[p].left {
				z = p
				t.rotateRight(z)
				p = t.nodes[z].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateLeft(g)
		}
	}
	t.nodes[t.root].color = black
}

// deleteFixup removes the extra black carried by x after a black node was
// unlinked, using the color of x's sibling to choose between recoloring and
// rotating.
func (t *Tree) deleteFixup(x handle) {
	for x != t.root && t.nodes[x].color == black {
		p := t.nodes[x].parent
		if x == t.nodes[p].left {
			w := t.nodes[p].right
			if t.nodes[w].color == red {
				t.nodes[w].color = black
				t.nodes[p].color = red
				t.rotateLeft(p)
				w = t.nodes[p].right
			}
			if t.nodes[t.nodes[w].left].color == black && t.nodes[t.nodes[w].right].color == black {
				t.nodes[w].color = red
				x = p
				continue
			}
			if t.nodes[t.nodes[w].right].color == black {
				t.nodes[t.nodes[w].left].color = black
				t.nodes[w].color = red
				t.rotateRight(w)
				w = t.nodes[p].right
			}
			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = black
			t.nodes[t.nodes[w].right].color = black
			t.rotateLeft(p)
			x = t.root
		} else {
			w := t.nodes[p].left
			if t.nodes[w].color == red {
				t.nodes[w].color = black
				t.nodes[p].color = red
				t.rotateRight(p)
				w = t.nodes[p].left
			}
			if t.nodes[t.nodes[w].right].color == black && t.nodes[t.nodes[w].left].color == black {
				t.nodes[w].color = red
				x = p
				continue
			}
			if t.nodes[t.nodes[w].left].color == black {
				t.nodes[t.nodes[w].right].color = black
				t.nodes[w].color = red
				t.rotateLeft(w)
				w = t.nodes[p].left
			}
			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = black
			t.nodes[t.nodes[w].left].color = black
			t.rotateRight(p)
			x = t.root
		}
	}
	t.nodes[x].color = black
}

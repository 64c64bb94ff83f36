package rbtree

import "filevault/metadata"

type nodeColor uint8

const (
	red nodeColor = iota
	black
)

func (c nodeColor) String() string {
	if c == red {
		return "R"
	}
	return "B"
}

// handle indexes Tree.nodes. Children are owned through handles; parent is a
// back-reference used only while rotating and rebalancing.
type handle int32

// sentinel is the shared black leaf at nodes[0] that stands in for every nil
// child and for the root's parent.
const sentinel handle = 0

type node struct {
	key                 string
	rec                 metadata.Record
	color               nodeColor
	left, right, parent handle
}

// Package btree is a B-Tree index of file metadata records keyed by filename.
//
// The degree is the maximum number of children of a node, so a node holds at
// most degree-1 keys and, except for the root, at least ceil(degree/2)-1.
// Inserts split full nodes bottom-up and deletes borrow or merge bottom-up,
// both walking an explicit path instead of recursing.
package btree

import "fmt"

// DegreeConfigError is returned by New for a degree below 2.
type DegreeConfigError struct {
	Degree int
}

func (e *DegreeConfigError) Error() string {
	return fmt.Sprintf("btree: degree %d is below the minimum of 2", e.Degree)
}

// minDegree is the smallest degree the tree operates at. A degree-2 node
// holds one key, and splitting two keys around a median leaves one half
// empty, so degree 2 is run as a 2-3 tree.
const minDegree = 3

func maxItems(degree int) int {
	return degree - 1
}

// ceil(degree/2) - 1
func minItems(degree int) int {
	return (degree+1)/2 - 1
}

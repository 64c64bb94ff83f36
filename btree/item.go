package btree

import "filevault/metadata"

/*
data item in a node.
key uniquely identifies a data item and is used for sorting them (the filename).
rec holds the metadata stored under that key.
*/
type item struct {
	key string
	rec metadata.Record
}

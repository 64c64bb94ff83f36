package metadata

import "fmt"

// KeyNotFoundError is returned when an operation assumes a filename is
// present in an index and it is not.
type KeyNotFoundError struct {
	Index    string
	Filename string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: key %q not found", e.Index, e.Filename)
}

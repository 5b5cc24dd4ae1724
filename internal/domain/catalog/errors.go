package catalog

import "fmt"

// ErrUnknownObject is returned when an id or name does not resolve
type ErrUnknownObject struct {
	ID   ID
	Name string
}

func (e *ErrUnknownObject) Error() string {
	if e.ID != NoID {
		return fmt.Sprintf("unknown catalog object %d (referenced by %s)", e.ID, e.Name)
	}
	return fmt.Sprintf("unknown catalog object: %s", e.Name)
}

// ErrDuplicateObject is returned when two objects of one kind share a name
type ErrDuplicateObject struct {
	Kind Kind
	Name string
}

func (e *ErrDuplicateObject) Error() string {
	return fmt.Sprintf("duplicate catalog %s: %s", e.Kind, e.Name)
}

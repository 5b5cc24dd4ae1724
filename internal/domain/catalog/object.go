package catalog

import "fmt"

// ID is the dense index of an object inside its catalog. Ids start at 1.
type ID int

// NoID marks an absent reference
const NoID ID = 0

// Kind discriminates the closed set of catalog objects
type Kind int

const (
	KindResource Kind = iota
	KindProcess
	KindEntity
	KindTechnology
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "RESOURCE"
	case KindProcess:
		return "PROCESS"
	case KindEntity:
		return "ENTITY"
	case KindTechnology:
		return "TECHNOLOGY"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// ParseKind converts a kind name back into a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "RESOURCE":
		return KindResource, nil
	case "PROCESS":
		return KindProcess, nil
	case "ENTITY":
		return KindEntity, nil
	case "TECHNOLOGY":
		return KindTechnology, nil
	default:
		return 0, fmt.Errorf("unknown object kind: %s", s)
	}
}

// Header carries the identity and accessibility shared by every object.
//
// Accessible means reachable at all through the unlock tree. AccessibleNow
// means unlocked with the milestones the player has currently reached.
// Root objects are available without any prerequisite.
type Header struct {
	ID            ID
	Name          string
	Accessible    bool
	AccessibleNow bool
	Root          bool
}

// Meta exposes the header of any object
func (h *Header) Meta() *Header {
	return h
}

// Object is implemented only by *Resource, *Process, *Entity and *Technology.
type Object interface {
	Meta() *Header
	Kind() Kind

	// dependencies emits the object's dependency groups; unexported to keep the set closed
	dependencies(emit func(flags DependencyFlags, elements []ID))
}

package production

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PageID identifies a production page
type PageID struct {
	value string
}

// NewPageID generates a fresh page identifier
func NewPageID() PageID {
	return PageID{value: uuid.New().String()}
}

// ParsePageID validates an existing identifier
func ParsePageID(id string) (PageID, error) {
	if id == "" {
		return PageID{}, fmt.Errorf("page id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return PageID{}, fmt.Errorf("invalid page id format: %w", err)
	}
	return PageID{value: id}, nil
}

func (p PageID) String() string { return p.value }

// IsZero reports whether the id was never assigned
func (p PageID) IsZero() bool { return p.value == "" }

// Page is a named production plan owning the top-level flow network
type Page struct {
	ID   PageID
	Name string
	Root *FlowNetwork
}

// NewPage creates an empty page
func NewPage(name string) (*Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("page name cannot be empty")
	}
	return &Page{ID: NewPageID(), Name: name, Root: NewFlowNetwork()}, nil
}

// Stats counts what a solve of the page would touch
func (p *Page) Stats() (instances, links int) {
	flatInstances, flatLinks := p.Root.Flatten()
	return len(flatInstances), len(flatLinks)
}

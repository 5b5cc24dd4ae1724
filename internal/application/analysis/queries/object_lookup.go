package queries

import (
	"strings"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// lookupObject resolves name within kind, or with Catalog.Lookup precedence when kind is empty
func lookupObject(c *catalog.Catalog, kind, name string) (catalog.Object, error) {
	if kind == "" {
		return c.MustLookup(name)
	}
	k, err := catalog.ParseKind(strings.ToUpper(kind))
	if err != nil {
		return nil, err
	}
	return c.MustLookupKind(k, name)
}

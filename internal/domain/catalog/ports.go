package catalog

import "context"

// Repository loads and stores the catalog snapshot
type Repository interface {
	Load(ctx context.Context) (*Catalog, error)
	Save(ctx context.Context, c *Catalog) error
}

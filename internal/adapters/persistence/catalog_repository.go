package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// ErrCatalogEmpty is returned by Load when nothing was imported yet
var ErrCatalogEmpty = errors.New("catalog has not been imported")

const catalogBatchSize = 200

// GormCatalogRepository stores the catalog as one JSON row per object
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Load rebuilds the catalog; rows are replayed in id order so ids stay stable
func (r *GormCatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	var models []CatalogObjectModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(models) == 0 {
		return nil, ErrCatalogEmpty
	}

	b := catalog.NewBuilder()
	for i := range models {
		o, err := modelToObject(&models[i])
		if err != nil {
			return nil, err
		}
		b.Add(o)
	}
	return b.Build()
}

// Save replaces the stored catalog
func (r *GormCatalogRepository) Save(ctx context.Context, c *catalog.Catalog) error {
	models := make([]CatalogObjectModel, 0, len(c.Objects()))
	for _, o := range c.Objects() {
		model, err := objectToModel(o)
		if err != nil {
			return err
		}
		models = append(models, *model)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CatalogObjectModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(models, catalogBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save catalog: %w", err)
		}
		return nil
	})
}

func objectToModel(o catalog.Object) (*CatalogObjectModel, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", o.Meta().Name, err)
	}
	return &CatalogObjectModel{
		ID:      int(o.Meta().ID),
		Kind:    o.Kind().String(),
		Name:    o.Meta().Name,
		Payload: string(payload),
	}, nil
}

func modelToObject(model *CatalogObjectModel) (catalog.Object, error) {
	kind, err := catalog.ParseKind(model.Kind)
	if err != nil {
		return nil, fmt.Errorf("catalog object %d: %w", model.ID, err)
	}

	var o catalog.Object
	switch kind {
	case catalog.KindResource:
		o = &catalog.Resource{}
	case catalog.KindProcess:
		o = &catalog.Process{}
	case catalog.KindEntity:
		o = &catalog.Entity{}
	case catalog.KindTechnology:
		o = &catalog.Technology{}
	}
	if err := json.Unmarshal([]byte(model.Payload), o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog object %d: %w", model.ID, err)
	}
	if h := o.Meta(); h.ID != catalog.ID(model.ID) || h.Name != model.Name {
		return nil, fmt.Errorf("catalog object %d: payload belongs to %q (%d)", model.ID, h.Name, h.ID)
	}
	return o, nil
}

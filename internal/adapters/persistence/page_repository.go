package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

// networkSnapshot is the stored form of a flow network. Only configuration is
// kept; solve results are recomputed.
type networkSnapshot struct {
	Links     []linkSnapshot     `json:"links,omitempty"`
	Instances []instanceSnapshot `json:"instances,omitempty"`
}

type linkSnapshot struct {
	Resource  catalog.ID `json:"resource"`
	Amount    float64    `json:"amount"`
	Algorithm string     `json:"algorithm"`
}

type instanceSnapshot struct {
	Recipe            catalog.ID       `json:"recipe"`
	Entity            catalog.ID       `json:"entity,omitempty"`
	Fuel              catalog.ID       `json:"fuel,omitempty"`
	Enabled           bool             `json:"enabled"`
	FixedBuildings    float64          `json:"fixed_buildings,omitempty"`
	BuiltBuildings    *float64         `json:"built_buildings,omitempty"`
	ProductivityBonus float64          `json:"productivity_bonus,omitempty"`
	Subgroup          *networkSnapshot `json:"subgroup,omitempty"`
}

// GormPageRepository persists production pages with a JSON network column
type GormPageRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormPageRepository creates a new GORM page repository
func NewGormPageRepository(db *gorm.DB, clock shared.Clock) *GormPageRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormPageRepository{db: db, clock: clock}
}

// Save inserts or replaces a page
func (r *GormPageRepository) Save(ctx context.Context, page *production.Page) error {
	network, err := json.Marshal(snapshotNetwork(page.Root))
	if err != nil {
		return fmt.Errorf("failed to marshal page network: %w", err)
	}

	now := r.clock.Now()
	model := ProductionPageModel{
		ID:        page.ID.String(),
		Name:      page.Name,
		Network:   string(network),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "network", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", page.Name, err)
	}
	return nil
}

// FindByID retrieves a page by id
func (r *GormPageRepository) FindByID(ctx context.Context, id production.PageID) (*production.Page, error) {
	return r.findOne(ctx, "id = ?", id.String())
}

// FindByName retrieves a page by its unique name
func (r *GormPageRepository) FindByName(ctx context.Context, name string) (*production.Page, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *GormPageRepository) findOne(ctx context.Context, query string, arg string) (*production.Page, error) {
	var model ProductionPageModel
	result := r.db.WithContext(ctx).Where(query, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", production.ErrPageNotFound, arg)
		}
		return nil, fmt.Errorf("failed to find page: %w", result.Error)
	}
	return modelToPage(&model)
}

// List returns every page ordered by name
func (r *GormPageRepository) List(ctx context.Context) ([]*production.Page, error) {
	var models []ProductionPageModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := make([]*production.Page, 0, len(models))
	for i := range models {
		page, err := modelToPage(&models[i])
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func modelToPage(model *ProductionPageModel) (*production.Page, error) {
	id, err := production.ParsePageID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid page id in database: %w", err)
	}

	var snapshot networkSnapshot
	if err := json.Unmarshal([]byte(model.Network), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network of page %s: %w", model.Name, err)
	}

	root := production.NewFlowNetwork()
	if err := restoreNetwork(root, &snapshot); err != nil {
		return nil, fmt.Errorf("page %s: %w", model.Name, err)
	}
	return &production.Page{ID: id, Name: model.Name, Root: root}, nil
}

func snapshotNetwork(n *production.FlowNetwork) *networkSnapshot {
	s := &networkSnapshot{}
	for _, link := range n.Links() {
		s.Links = append(s.Links, linkSnapshot{
			Resource:  link.Resource,
			Amount:    link.Amount,
			Algorithm: link.Algorithm.String(),
		})
	}
	for _, instance := range n.Instances() {
		is := instanceSnapshot{
			Recipe:            instance.Recipe,
			Entity:            instance.Entity,
			Fuel:              instance.Fuel,
			Enabled:           instance.Enabled,
			FixedBuildings:    instance.FixedBuildings,
			BuiltBuildings:    instance.BuiltBuildings,
			ProductivityBonus: instance.ProductivityBonus,
		}
		if sub := instance.Subgroup(); sub != nil {
			is.Subgroup = snapshotNetwork(sub)
		}
		s.Instances = append(s.Instances, is)
	}
	return s
}

func restoreNetwork(n *production.FlowNetwork, s *networkSnapshot) error {
	for _, ls := range s.Links {
		algorithm, err := production.ParseLinkAlgorithm(ls.Algorithm)
		if err != nil {
			return err
		}
		if _, err := n.AddLink(ls.Resource, ls.Amount, algorithm); err != nil {
			return err
		}
	}
	for _, is := range s.Instances {
		instance := n.AddProcess(is.Recipe)
		instance.Entity = is.Entity
		instance.Fuel = is.Fuel
		instance.Enabled = is.Enabled
		instance.FixedBuildings = is.FixedBuildings
		instance.BuiltBuildings = is.BuiltBuildings
		instance.ProductivityBonus = is.ProductivityBonus
		if is.Subgroup != nil {
			if err := restoreNetwork(instance.CreateSubgroup(), is.Subgroup); err != nil {
				return err
			}
		}
	}
	return nil
}

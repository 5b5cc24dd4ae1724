package persistence

import (
	"time"
)

// CatalogObjectModel represents the catalog_objects table.
// One row per object; the id is the dense catalog id. Names are unique per kind.
type CatalogObjectModel struct {
	ID      int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Kind    string `gorm:"column:kind;not null;uniqueIndex:idx_catalog_objects_kind_name"`
	Name    string `gorm:"column:name;not null;uniqueIndex:idx_catalog_objects_kind_name"`
	Payload string `gorm:"column:payload;type:text;not null"` // JSON of the domain object
}

func (CatalogObjectModel) TableName() string {
	return "catalog_objects"
}

// ProductionPageModel represents the production_pages table
type ProductionPageModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Network   string    `gorm:"column:network;type:text;not null"` // JSON network snapshot
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (ProductionPageModel) TableName() string {
	return "production_pages"
}

// SolveRunModel represents the solve_runs table
type SolveRunModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	PageID         string     `gorm:"column:page_id;not null;index"`
	Status         string     `gorm:"column:status;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	StoppedAt      *time.Time `gorm:"column:stopped_at"`
	Instances      int        `gorm:"column:instances;not null;default:0"`
	Links          int        `gorm:"column:links;not null;default:0"`
	Diagnosed      bool       `gorm:"column:diagnosed;not null;default:false"`
	ObjectiveValue float64    `gorm:"column:objective_value;not null;default:0"`
	Message        string     `gorm:"column:message;type:text"`
}

func (SolveRunModel) TableName() string {
	return "solve_runs"
}

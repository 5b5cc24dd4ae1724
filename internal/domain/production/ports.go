package production

import "context"

// PageRepository persists production pages with their whole network tree
type PageRepository interface {
	Save(ctx context.Context, page *Page) error
	FindByID(ctx context.Context, id PageID) (*Page, error)
	FindByName(ctx context.Context, name string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
}

// SolveRunRepository keeps the solve history of each page
type SolveRunRepository interface {
	Add(ctx context.Context, run *SolveRun) error
	Update(ctx context.Context, run *SolveRun) error
	FindByPage(ctx context.Context, pageID PageID, limit int) ([]*SolveRun, error)
}

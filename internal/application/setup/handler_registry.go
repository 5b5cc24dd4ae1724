package setup

import (
	"reflect"

	analysisCommands "github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/commands"
	analysisQueries "github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/queries"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	productionCommands "github.com/have-fun-was-taken/yafc-ce/internal/application/production/commands"
	productionQueries "github.com/have-fun-was-taken/yafc-ce/internal/application/production/queries"
	productionServices "github.com/have-fun-was-taken/yafc-ce/internal/application/production/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

// SolverSettings tune every LP run started through the mediator
type SolverSettings struct {
	Attempts          int
	Background        bool
	IncludeMilestones bool
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	catalogRepo catalog.Repository
	pageRepo    production.PageRepository
	runRepo     production.SolveRunRepository
	solvers     optimization.SolverFactory
	decode      analysisCommands.CatalogDecoder
	settings    SolverSettings
	clock       shared.Clock
	sessions    *services.SessionCache
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	catalogRepo catalog.Repository,
	pageRepo production.PageRepository,
	runRepo production.SolveRunRepository,
	solvers optimization.SolverFactory,
	decode analysisCommands.CatalogDecoder,
	settings SolverSettings,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		catalogRepo: catalogRepo,
		pageRepo:    pageRepo,
		runRepo:     runRepo,
		solvers:     solvers,
		decode:      decode,
		settings:    settings,
		clock:       clock,
		sessions: services.NewSessionCache(catalogRepo, solvers, services.SessionOptions{
			Attempts:          settings.Attempts,
			IncludeMilestones: settings.IncludeMilestones,
		}),
	}
}

// Sessions exposes the shared analysis cache
func (r *HandlerRegistry) Sessions() *services.SessionCache {
	return r.sessions
}

// RegisterAnalysisHandlers registers the catalog import and analysis handlers
//
// This method registers:
//   - ImportCatalogCommand → ImportCatalogHandler
//   - RunAnalysisCommand → RunAnalysisHandler
//   - GetObjectCostQuery → GetObjectCostHandler
//   - GetDependenciesQuery → GetDependenciesHandler
//   - FindTechnologyLoopsQuery → FindTechnologyLoopsHandler
func (r *HandlerRegistry) RegisterAnalysisHandlers(m mediator.Mediator) error {
	handlers := map[reflect.Type]mediator.RequestHandler{
		reflect.TypeOf(&analysisCommands.ImportCatalogCommand{}):    analysisCommands.NewImportCatalogHandler(r.decode, r.catalogRepo, r.sessions),
		reflect.TypeOf(&analysisCommands.RunAnalysisCommand{}):      analysisCommands.NewRunAnalysisHandler(r.sessions),
		reflect.TypeOf(&analysisQueries.GetObjectCostQuery{}):       analysisQueries.NewGetObjectCostHandler(r.sessions),
		reflect.TypeOf(&analysisQueries.GetDependenciesQuery{}):     analysisQueries.NewGetDependenciesHandler(r.sessions),
		reflect.TypeOf(&analysisQueries.FindTechnologyLoopsQuery{}): analysisQueries.NewFindTechnologyLoopsHandler(r.sessions),
	}
	return registerAll(m, handlers)
}

// RegisterProductionHandlers registers the page and solve handlers
//
// This method registers:
//   - ImportPageCommand → ImportPageHandler
//   - SolvePageCommand → SolvePageHandler
//   - ExportPageQuery → ExportPageHandler
//   - ListPagesQuery → ListPagesHandler
//   - ListSolveRunsQuery → ListSolveRunsHandler
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	solveHandler := productionCommands.NewSolvePageHandler(
		r.pageRepo,
		r.runRepo,
		r.sessions,
		r.solvers,
		r.settings.Attempts,
		productionServices.NewSuspender(r.settings.Background),
		r.clock,
	)

	handlers := map[reflect.Type]mediator.RequestHandler{
		reflect.TypeOf(&productionCommands.ImportPageCommand{}): productionCommands.NewImportPageHandler(r.pageRepo, r.sessions),
		reflect.TypeOf(&productionCommands.SolvePageCommand{}):  solveHandler,
		reflect.TypeOf(&productionQueries.ExportPageQuery{}):    productionQueries.NewExportPageHandler(r.pageRepo, r.sessions),
		reflect.TypeOf(&productionQueries.ListPagesQuery{}):     productionQueries.NewListPagesHandler(r.pageRepo),
		reflect.TypeOf(&productionQueries.ListSolveRunsQuery{}): productionQueries.NewListSolveRunsHandler(r.pageRepo, r.runRepo),
	}
	return registerAll(m, handlers)
}

func registerAll(m mediator.Mediator, handlers map[reflect.Type]mediator.RequestHandler) error {
	for requestType, handler := range handlers {
		if err := m.Register(requestType, handler); err != nil {
			return err
		}
	}
	return nil
}

// CreateConfiguredMediator creates a new mediator with every handler registered.
// Middlewares are applied in order, the first one outermost.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, middleware := range middlewares {
		m.RegisterMiddleware(middleware)
	}

	if err := r.RegisterAnalysisHandlers(m); err != nil {
		return nil, err
	}

	// Page handlers need persistence; an analysis-only registry skips them
	if r.pageRepo != nil && r.runRepo != nil {
		if err := r.RegisterProductionHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

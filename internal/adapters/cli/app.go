package cli

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/catalogfile"
	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/logging"
	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/metrics"
	solver "github.com/have-fun-was-taken/yafc-ce/internal/adapters/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/persistence"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/setup"
	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/database"
)

// application wires configuration, storage and the mediator for one CLI invocation
type application struct {
	cfg      *config.Config
	logger   *logging.ZapLogger
	db       *gorm.DB
	catalogs *persistence.GormCatalogRepository
	mediator mediator.Mediator
	metrics  *metrics.Server
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if databasePath != "" {
		cfg.Database.Type = "sqlite"
		cfg.Database.URL = ""
		cfg.Database.Path = databasePath
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newApplication(cfg *config.Config) (*application, error) {
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	app := &application{cfg: cfg, logger: logger}

	var middlewares []mediator.Middleware
	if cfg.Metrics.Enabled || metricsTextfile != "" {
		collector, err := initMetrics()
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(collector))
	}
	if cfg.Metrics.Enabled {
		app.metrics, err = metrics.StartServer(cfg.Metrics)
		if err != nil {
			return nil, err
		}
		logger.Log(common.LevelDebug, "Metrics server listening", map[string]interface{}{
			"address": app.metrics.Addr(),
			"path":    cfg.Metrics.Path,
		})
	}

	app.db, err = database.NewConnection(&cfg.Database)
	if err != nil {
		app.close(context.Background())
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(app.db); err != nil {
		app.close(context.Background())
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	app.catalogs = persistence.NewGormCatalogRepository(app.db)
	registry := setup.NewHandlerRegistry(
		app.catalogs,
		persistence.NewGormPageRepository(app.db, nil),
		persistence.NewGormSolveRunRepository(app.db),
		solver.NewGonumSolverFactory(cfg.Solver.Tolerance),
		catalogfile.Decode,
		setup.SolverSettings{
			Attempts:          cfg.Solver.MaxAttempts,
			Background:        cfg.Solver.Background,
			IncludeMilestones: cfg.Analysis.IncludeMilestones,
		},
		nil,
	)
	app.mediator, err = registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		app.close(context.Background())
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}
	return app, nil
}

func initMetrics() (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()
	solverCollector := metrics.NewSolverMetricsCollector()
	if err := solverCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register solver metrics: %w", err)
	}
	metrics.SetGlobalSolverCollector(solverCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commandCollector, nil
}

// send dispatches a request with the logger attached to the context
func (a *application) send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return a.mediator.Send(common.WithLogger(ctx, a.logger), request)
}

func (a *application) close(ctx context.Context) error {
	var errs []error
	if metricsTextfile != "" && metrics.IsEnabled() {
		errs = append(errs, metrics.WriteTextfile(metricsTextfile))
	}
	if a.metrics != nil {
		errs = append(errs, a.metrics.Shutdown(ctx))
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	// stderr cannot always be synced; the error carries no information
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// withApplication runs fn against a fully wired application and tears it down afterwards
func withApplication(ctx context.Context, fn func(ctx context.Context, app *application) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.close(context.Background()); err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, app)
}

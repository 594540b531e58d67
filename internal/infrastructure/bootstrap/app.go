package bootstrap

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/craftplan-go/internal/adapters/metrics"
	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/queries"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/services"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/config"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/database"
)

// SeedSource attributes stock loaded from a seed file
var SeedSource = storage.ActionSource{Actor: "seed", Machine: "stock-file"}

// App holds every component built from one configuration
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Patterns pattern.Source
	Storage  storage.Storage
	Planner  *services.CraftingPlanner
	PlanRepo crafting.PlanRepository
	Mediator mediator.Mediator
	Logger   common.Logger
	Clock    shared.Clock
}

// NewApp builds the planner stack: database, catalog, storage, planner and
// the mediator with every handler registered. The caller owns Close.
func NewApp(ctx context.Context, cfg *config.Config, logger common.Logger) (*App, error) {
	if logger == nil {
		logger = common.LoggerFromContext(ctx)
	}
	app := &App{Config: cfg, Logger: logger, Clock: shared.NewRealClock()}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	if err := database.AutoMigrate(db); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if app.Patterns, err = app.openCatalog(); err != nil {
		app.Close()
		return nil, err
	}
	if app.Storage, err = app.openStorage(ctx); err != nil {
		app.Close()
		return nil, err
	}

	options, err := PlannerOptionsFromConfig(cfg.Planner)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Planner = services.NewCraftingPlannerWithOptions(app.Patterns, app.Storage, app.Clock, options)
	app.PlanRepo = persistence.NewGormPlanRepository(db)

	if app.Mediator, err = NewMediator(cfg.Metrics.Enabled, app.Planner, app.PlanRepo, app.Clock); err != nil {
		app.Close()
		return nil, err
	}

	logger.Log("INFO", "Planner initialized", map[string]interface{}{
		"action":          "app_initialized",
		"catalog_source":  cfg.Catalog.Source,
		"storage_backend": cfg.Storage.Backend,
		"database":        database.Describe(&cfg.Database),
		"slot_policy":     string(options.SlotPolicy),
		"path_strategy":   string(options.PathStrategy),
	})
	return app, nil
}

// Close releases the database connection
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return database.Close(a.DB)
}

func (a *App) openCatalog() (pattern.Source, error) {
	switch a.Config.Catalog.Source {
	case "database":
		return persistence.NewGormPatternCatalog(a.DB, a.Clock), nil
	default:
		catalog, err := catalogfile.LoadCatalog(a.Config.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		a.Logger.Log("INFO", "Catalog loaded", map[string]interface{}{
			"action":   "catalog_loaded",
			"path":     a.Config.Catalog.Path,
			"patterns": catalog.Len(),
		})
		return catalog, nil
	}
}

func (a *App) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := a.Config.Storage
	switch cfg.Backend {
	case "database":
		store, err := persistence.NewGormStorage(a.DB, cfg.StorageID, cfg.Capacity, a.Clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage %q: %w", cfg.StorageID, err)
		}
		return store, nil
	default:
		store, err := storage.NewMemoryStorage(cfg.Capacity)
		if err != nil {
			return nil, err
		}
		if cfg.SeedPath == "" {
			return store, nil
		}
		stacks, err := catalogfile.ReadStock(cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock: %w", err)
		}
		if err := catalogfile.SeedStorage(ctx, store, stacks, SeedSource); err != nil {
			return nil, err
		}
		a.Logger.Log("INFO", "Storage seeded", map[string]interface{}{
			"action": "storage_seeded",
			"path":   cfg.SeedPath,
			"stacks": len(stacks),
		})
		return store, nil
	}
}

// PlannerOptionsFromConfig converts the planner config section
func PlannerOptionsFromConfig(cfg config.PlannerConfig) (services.PlannerOptions, error) {
	slotPolicy, err := services.ParseSlotPolicy(cfg.SlotPolicy)
	if err != nil {
		return services.PlannerOptions{}, err
	}
	pathStrategy, err := services.ParsePathStrategy(cfg.PathStrategy)
	if err != nil {
		return services.PlannerOptions{}, err
	}
	return services.PlannerOptions{
		BytesPerInvocation: cfg.BytesPerInvocation,
		SlotPolicy:         slotPolicy,
		PathStrategy:       pathStrategy,
		CommitPartial:      cfg.CommitPartial,
		Actor:              cfg.Actor,
	}, nil
}

// NewMediator creates the mediator and registers the planner handlers.
// With metrics enabled the global registry and collectors are initialized and
// every request is timed.
func NewMediator(
	metricsEnabled bool,
	planner *services.CraftingPlanner,
	planRepo crafting.PlanRepository,
	clock shared.Clock,
) (mediator.Mediator, error) {
	med := mediator.NewMediator()
	med.RegisterMiddleware(mediator.LoggingMiddleware())

	if metricsEnabled {
		metrics.InitRegistry()
		plannerCollector := metrics.NewPlannerMetricsCollector()
		if err := plannerCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register planner metrics: %w", err)
		}
		metrics.SetGlobalPlannerCollector(plannerCollector)

		commandCollector := metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		med.RegisterMiddleware(metrics.PrometheusMiddleware(commandCollector))
	}

	planHandler := commands.NewPlanCraftingHandler(planner, planRepo, clock)
	if err := mediator.RegisterHandler[*commands.PlanCraftingCommand](med, planHandler); err != nil {
		return nil, fmt.Errorf("failed to register PlanCrafting handler: %w", err)
	}

	getPlanHandler := queries.NewGetPlanHandler(planRepo)
	if err := mediator.RegisterHandler[*queries.GetPlanQuery](med, getPlanHandler); err != nil {
		return nil, fmt.Errorf("failed to register GetPlan handler: %w", err)
	}

	listPlansHandler := queries.NewListPlansHandler(planRepo)
	if err := mediator.RegisterHandler[*queries.ListPlansQuery](med, listPlansHandler); err != nil {
		return nil, fmt.Errorf("failed to register ListPlans handler: %w", err)
	}

	return med, nil
}

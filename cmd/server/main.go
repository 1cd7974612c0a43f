package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"formulab/internal/config"
	"formulab/internal/docgen"
	"formulab/internal/handler"
	noopnotify "formulab/internal/notify/noop"
	sesnotify "formulab/internal/notify/ses"
	"formulab/internal/pipeline"
	"formulab/internal/port"
	"formulab/internal/repository/postgres"
	"formulab/internal/repository/xlsx"
	"formulab/internal/router"
	"formulab/internal/service"
	localstorage "formulab/internal/storage/local"
	s3storage "formulab/internal/storage/s3"
	"formulab/internal/validator"
	"formulab/internal/validator/paint"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize repositories
	var (
		db          *sqlx.DB
		formulaRepo port.FormulaRepository
		ruleRepo    port.RuleRepository
		orderRepo   port.OrderRepository
		mappingRepo port.TypeMappingRepository
	)
	switch cfg.Catalog.Backend {
	case "postgres":
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		formulaRepo = postgres.NewFormulaRepo(db)
		ruleRepo = postgres.NewRuleRepo(db)
		orderRepo = postgres.NewOrderRepo(db)
		mappingRepo = postgres.NewTypeMappingRepo(db)
	default:
		store, err := xlsx.Open(cfg.Catalog.XLSXPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog workbook: %w", err)
		}
		formulaRepo = store.Formulas()
		ruleRepo = store.Rules()
		orderRepo = store.Orders()
		mappingRepo = store.TypeMappings()
	}

	// Initialize artifact storage
	var artifacts port.ArtifactStore
	if cfg.Storage.Backend == "s3" {
		artifacts, err = s3storage.NewS3Store(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		artifacts, err = localstorage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
	}

	// Initialize notifier
	var notifier port.Notifier
	if cfg.Notify.Provider == "ses" {
		notifier, err = sesnotify.NewSESNotifier(cfg.Notify.Region, cfg.Notify.FromAddress, cfg.Notify.FromName, cfg.Notify.ToAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	} else {
		notifier = noopnotify.NewNoopNotifier()
	}

	// Initialize validation engine and pipeline
	registry := validator.NewRegistry()
	for _, checker := range paint.AllCheckers() {
		registry.Register(checker)
	}
	engine := validator.NewEngine(registry, ruleRepo)
	pipe := pipeline.New(engine, mappingRepo)

	// Initialize services
	authSvc := service.NewAuthService(cfg.Auth, cfg.JWT)
	formulaSvc := service.NewFormulaService(formulaRepo, pipe)
	docs := docgen.NewXLSXGenerator(cfg.Docs.PlantName)
	orderSvc := service.NewOrderService(orderRepo, formulaRepo, pipe, docs, artifacts, notifier)
	ruleSvc := service.NewRuleService(ruleRepo, registry)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	formulaH := handler.NewFormulaHandler(formulaSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	ruleH := handler.NewRuleHandler(ruleSvc)
	mappingH := handler.NewMappingHandler(mappingRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, authH, formulaH, orderH, ruleH, mappingH, healthH, cfg.CORS.AllowedOrigins...)

	if !authSvc.Enabled() {
		log.Printf("auth disabled: no operator password hash configured")
	}
	log.Printf("Server starting on %s (catalog backend: %s)", cfg.Server.Port, cfg.Catalog.Backend)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

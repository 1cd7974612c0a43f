// Command importfml batch-imports raw formula sheets into the catalog. It
// walks a directory of pasted text captures (.txt or .fml), runs each one
// through the capture pipeline, and prints a summary.
// Usage: go run ./cmd/importfml -dir captures [-brand PM] [-force]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"formulab/internal/config"
	"formulab/internal/domain"
	"formulab/internal/pipeline"
	"formulab/internal/port"
	"formulab/internal/repository/postgres"
	"formulab/internal/repository/xlsx"
	"formulab/internal/service"
	"formulab/internal/validator"
	"formulab/internal/validator/paint"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "", "directory of raw formula text files")
	brand := flag.String("brand", "", "brand override applied to every file")
	force := flag.Bool("force", false, "save formulas despite validation errors")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		return errors.New("missing -dir")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var (
		formulaRepo port.FormulaRepository
		ruleRepo    port.RuleRepository
		mappingRepo port.TypeMappingRepository
	)
	if cfg.Catalog.Backend == "postgres" {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		formulaRepo = postgres.NewFormulaRepo(db)
		ruleRepo = postgres.NewRuleRepo(db)
		mappingRepo = postgres.NewTypeMappingRepo(db)
	} else {
		store, err := xlsx.Open(cfg.Catalog.XLSXPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog workbook: %w", err)
		}
		formulaRepo = store.Formulas()
		ruleRepo = store.Rules()
		mappingRepo = store.TypeMappings()
	}

	registry := validator.NewRegistry()
	for _, checker := range paint.AllCheckers() {
		registry.Register(checker)
	}
	engine := validator.NewEngine(registry, ruleRepo)
	pipe := pipeline.New(engine, mappingRepo)
	formulaSvc := service.NewFormulaService(formulaRepo, pipe)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *dir, err)
	}

	ctx := context.Background()
	var imported, blocked, duplicate, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".fml" {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		text, err := os.ReadFile(path)
		if err != nil {
			log.Printf("%s: read failed: %v", entry.Name(), err)
			failed++
			continue
		}

		result, err := formulaSvc.Import(ctx, &service.ImportInput{
			Text:  string(text),
			Brand: *brand,
			Force: *force,
		})
		switch {
		case err == nil:
			log.Printf("%s: imported as %s (%d issues)", entry.Name(), result.Formula.Key, len(result.Issues))
			imported++
		case errors.Is(err, domain.ErrValidationBlocked):
			log.Printf("%s: blocked by validation errors (use -force to save anyway)", entry.Name())
			for _, issue := range result.Issues {
				log.Printf("  [%s] %s: %s", issue.Severity, issue.Code, issue.Message)
			}
			blocked++
		case errors.Is(err, domain.ErrDuplicateFormulaKey):
			log.Printf("%s: key %s already in catalog, skipped", entry.Name(), result.Formula.Key)
			duplicate++
		default:
			log.Printf("%s: %v", entry.Name(), err)
			failed++
		}
	}

	log.Printf("done: %d imported, %d blocked, %d duplicate, %d failed",
		imported, blocked, duplicate, failed)
	if failed > 0 {
		return fmt.Errorf("%d files failed to import", failed)
	}
	return nil
}

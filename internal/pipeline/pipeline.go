package pipeline

import (
	"context"
	"fmt"
	"log"

	"formulab/internal/domain"
	"formulab/internal/parser"
	"formulab/internal/port"
	"formulab/internal/scaling"
	"formulab/internal/validator"
)

// Result is a formula together with the findings of the rule engine. Issues
// accompany the formula instead of blocking it: warnings and even errors
// still leave a usable structure the operator can inspect and correct.
type Result struct {
	Formula *domain.Formula         `json:"formula"`
	Issues  []domain.Issue          `json:"issues"`
	Lines   []parser.ClassifiedLine `json:"-"`
}

// Pipeline runs the capture flow: classify pasted text, build the record,
// validate it, and scale on demand. Structural failures (no stages, garbled
// quantities) return an error; semantic findings come back as Issues.
type Pipeline struct {
	engine   *validator.Engine
	mappings port.TypeMappingRepository
}

// New creates a Pipeline.
func New(engine *validator.Engine, mappings port.TypeMappingRepository) *Pipeline {
	return &Pipeline{engine: engine, mappings: mappings}
}

// Parse turns raw pasted text into a validated formula.
func (p *Pipeline) Parse(ctx context.Context, text string, opts parser.BuildOptions) (*Result, error) {
	lines := parser.Classify(text)

	if opts.TypeTags == nil && p.mappings != nil {
		tags, err := p.mappings.All(ctx)
		if err != nil {
			log.Printf("pipeline: loading type mappings: %v", err)
		} else {
			opts.TypeTags = tags
		}
	}

	formula, err := parser.Build(lines, opts)
	if err != nil {
		return nil, fmt.Errorf("building formula: %w", err)
	}

	issues, err := p.engine.Validate(ctx, formula)
	if err != nil {
		return nil, fmt.Errorf("validating formula: %w", err)
	}
	return &Result{Formula: formula, Issues: issues, Lines: lines}, nil
}

// Scale rescales a formula to the requested volume and re-validates the
// result, so a scaled batch carries its own findings.
func (p *Pipeline) Scale(ctx context.Context, formula *domain.Formula, req domain.ScalingRequest) (*Result, error) {
	scaled, err := scaling.Scale(formula, req)
	if err != nil {
		return nil, err
	}
	issues, err := p.engine.Validate(ctx, scaled)
	if err != nil {
		return nil, fmt.Errorf("validating scaled formula: %w", err)
	}
	return &Result{Formula: scaled, Issues: issues}, nil
}

// Revalidate reruns the rule engine on an already built formula, picking up
// rule rows changed since it was parsed.
func (p *Pipeline) Revalidate(ctx context.Context, formula *domain.Formula) ([]domain.Issue, error) {
	return p.engine.Validate(ctx, formula)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"formulab/internal/domain"
	"formulab/internal/parser"
	"formulab/internal/pipeline"
	"formulab/internal/port"
)

// ImportInput is the DTO for capturing a pasted formula sheet.
type ImportInput struct {
	Text         string            `json:"text" binding:"required"`
	Brand        string            `json:"brand"`
	Type         string            `json:"type"`
	Color        string            `json:"color"`
	Presentation string            `json:"presentation"`
	Version      string            `json:"version"`
	Key          string            `json:"key"`
	Metadata     map[string]string `json:"metadata"`
	Force        bool              `json:"force"` // save despite validation errors
}

// ScaleInput is the DTO for scaling a catalog formula.
type ScaleInput struct {
	TargetVolume string `json:"target_volume" binding:"required"`
	Unit         string `json:"unit"`
}

// FormulaService defines the catalog contract: capture pasted sheets, keep
// the structured records, and produce scaled variants.
type FormulaService interface {
	Import(ctx context.Context, input *ImportInput) (*pipeline.Result, error)
	Preview(ctx context.Context, input *ImportInput) (*pipeline.Result, error)
	GetByKey(ctx context.Context, key string) (*domain.Formula, error)
	List(ctx context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error)
	Delete(ctx context.Context, key string) error
	Scale(ctx context.Context, key string, req domain.ScalingRequest) (*pipeline.Result, error)
	Validate(ctx context.Context, key string) ([]domain.Issue, error)
}

type formulaService struct {
	repo port.FormulaRepository
	pipe *pipeline.Pipeline
}

// NewFormulaService creates a new FormulaService implementation.
func NewFormulaService(repo port.FormulaRepository, pipe *pipeline.Pipeline) FormulaService {
	return &formulaService{repo: repo, pipe: pipe}
}

// Preview runs the capture pipeline without touching the catalog, so the
// operator can inspect the structured result and its findings first.
func (s *formulaService) Preview(ctx context.Context, input *ImportInput) (*pipeline.Result, error) {
	return s.pipe.Parse(ctx, input.Text, buildOptions(input))
}

// Import parses, validates and saves a pasted sheet. Validation errors block
// the save unless Force is set; warnings never block.
func (s *formulaService) Import(ctx context.Context, input *ImportInput) (*pipeline.Result, error) {
	result, err := s.pipe.Parse(ctx, input.Text, buildOptions(input))
	if err != nil {
		return nil, fmt.Errorf("formula.Import: %w", err)
	}

	if domain.HasErrors(result.Issues) && !input.Force {
		return result, domain.ErrValidationBlocked
	}

	exists, err := s.repo.ExistsKey(ctx, result.Formula.Key)
	if err != nil {
		return nil, fmt.Errorf("formula.Import: %w", err)
	}
	if exists {
		return result, domain.ErrDuplicateFormulaKey
	}

	result.Formula.ID = uuid.New()
	result.Formula.CreatedAt = time.Now()
	if err := s.repo.Save(ctx, result.Formula); err != nil {
		return nil, fmt.Errorf("formula.Import: %w", err)
	}
	return result, nil
}

func (s *formulaService) GetByKey(ctx context.Context, key string) (*domain.Formula, error) {
	return s.repo.GetByKey(ctx, key)
}

func (s *formulaService) List(ctx context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error) {
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *formulaService) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// Scale loads a catalog formula and rescales it to the requested volume.
// The scaled variant is returned, never stored: the catalog keeps master
// batches only.
func (s *formulaService) Scale(ctx context.Context, key string, req domain.ScalingRequest) (*pipeline.Result, error) {
	formula, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.pipe.Scale(ctx, formula, req)
}

// Validate reruns the rule engine on a stored formula, picking up rule rows
// changed since it was imported.
func (s *formulaService) Validate(ctx context.Context, key string) ([]domain.Issue, error) {
	formula, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.pipe.Revalidate(ctx, formula)
}

func buildOptions(input *ImportInput) parser.BuildOptions {
	return parser.BuildOptions{
		Brand:         domain.Brand(input.Brand),
		TypeOverride:  input.Type,
		ColorOverride: input.Color,
		Presentation:  input.Presentation,
		Version:       input.Version,
		KeyOverride:   input.Key,
		Metadata:      input.Metadata,
	}
}

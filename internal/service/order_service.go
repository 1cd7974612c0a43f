package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"formulab/internal/docgen"
	"formulab/internal/domain"
	"formulab/internal/pipeline"
	"formulab/internal/port"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CreateOrderInput is the DTO for issuing a production order.
type CreateOrderInput struct {
	FormulaKey string          `json:"formula_key" binding:"required"`
	TargetGal  decimal.Decimal `json:"target_gal" binding:"required"`
	Notes      string          `json:"notes"`
	CreatedBy  string          `json:"created_by"`
	Force      bool            `json:"force"` // issue despite validation errors
}

// ProduceInput is the DTO for closing an order as produced.
type ProduceInput struct {
	MeasuredWPV decimal.Decimal `json:"measured_wpv"`
	Notes       string          `json:"notes"`
}

// OrderService defines the production order contract: scale a catalog
// formula to the requested gallons, render the floor document, and track the
// order through its lifecycle.
type OrderService interface {
	Create(ctx context.Context, input *CreateOrderInput) (*domain.Order, []domain.Issue, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error)
	MarkProduced(ctx context.Context, id string, input *ProduceInput) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	Document(ctx context.Context, id string) (io.ReadCloser, error)
}

type orderService struct {
	orders   port.OrderRepository
	formulas port.FormulaRepository
	pipe     *pipeline.Pipeline
	docs     port.DocumentGenerator
	store    port.ArtifactStore
	notifier port.Notifier
}

// NewOrderService creates a new OrderService implementation.
func NewOrderService(
	orders port.OrderRepository,
	formulas port.FormulaRepository,
	pipe *pipeline.Pipeline,
	docs port.DocumentGenerator,
	store port.ArtifactStore,
	notifier port.Notifier,
) OrderService {
	return &orderService{
		orders:   orders,
		formulas: formulas,
		pipe:     pipe,
		docs:     docs,
		store:    store,
		notifier: notifier,
	}
}

// Create issues a production order: the catalog formula is scaled to the
// requested gallons, revalidated, rendered as a production workbook and
// stored. Validation errors on the scaled batch block the order unless
// Force is set.
func (s *orderService) Create(ctx context.Context, input *CreateOrderInput) (*domain.Order, []domain.Issue, error) {
	formula, err := s.formulas.GetByKey(ctx, input.FormulaKey)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.pipe.Scale(ctx, formula, domain.ScalingRequest{
		TargetVolume: input.TargetGal,
		Unit:         domain.UnitGallon,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("order.Create: %w", err)
	}
	if domain.HasErrors(result.Issues) && !input.Force {
		return nil, result.Issues, domain.ErrValidationBlocked
	}

	now := time.Now()
	id, err := s.nextID(ctx, now)
	if err != nil {
		return nil, result.Issues, fmt.Errorf("order.Create: %w", err)
	}

	order := &domain.Order{
		ID:         id,
		FormulaKey: formula.Key,
		TargetGal:  input.TargetGal,
		Status:     domain.OrderStatusPending,
		Notes:      input.Notes,
		CreatedBy:  input.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	doc, err := s.docs.ProductionOrder(ctx, result.Formula, order)
	if err != nil {
		return nil, result.Issues, fmt.Errorf("order.Create: %w", err)
	}

	put, err := s.store.Put(ctx, port.PutInput{
		Key:         docgen.DocumentKey(order),
		Body:        bytes.NewReader(doc),
		ContentType: xlsxContentType,
		Size:        int64(len(doc)),
	})
	if err != nil {
		return nil, result.Issues, fmt.Errorf("order.Create: %w", err)
	}
	order.DocumentRef = put.Ref

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, result.Issues, fmt.Errorf("order.Create: %w", err)
	}

	if err := s.notifier.NotifyOrderCreated(ctx, order); err != nil {
		log.Printf("order %s: notify created: %v", order.ID, err)
	}
	return order, result.Issues, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	return s.orders.List(ctx, status, offset, limit)
}

// MarkProduced closes a pending order with the weight-per-gallon measured on
// the finished batch.
func (s *orderService) MarkProduced(ctx context.Context, id string, input *ProduceInput) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("order.MarkProduced: order %s is %s: %w", id, order.Status, domain.ErrInvalidOrderState)
	}

	order.Status = domain.OrderStatusProduced
	order.MeasuredWPV = input.MeasuredWPV
	if input.Notes != "" {
		order.Notes = input.Notes
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("order.MarkProduced: %w", err)
	}

	if err := s.notifier.NotifyOrderProduced(ctx, order); err != nil {
		log.Printf("order %s: notify produced: %v", order.ID, err)
	}
	return order, nil
}

// Cancel voids a pending order. The stored document is kept for the audit
// trail.
func (s *orderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("order.Cancel: order %s is %s: %w", id, order.Status, domain.ErrInvalidOrderState)
	}

	order.Status = domain.OrderStatusCancelled
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("order.Cancel: %w", err)
	}
	return order, nil
}

// Document streams the stored production workbook for an order.
func (s *orderService) Document(ctx context.Context, id string) (io.ReadCloser, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.Get(ctx, docgen.DocumentKey(order))
	if err != nil {
		return nil, fmt.Errorf("order.Document: %w", err)
	}
	return rc, nil
}

// nextID allocates the next sequential order id for the day, in the form
// ORD-YYYYMMDD-XXXX.
func (s *orderService) nextID(ctx context.Context, now time.Time) (string, error) {
	prefix := "ORD-" + now.Format("20060102") + "-"
	n, err := s.orders.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

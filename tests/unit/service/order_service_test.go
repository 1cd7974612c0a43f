package service_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formulab/internal/domain"
	"formulab/internal/port"
	"formulab/internal/service"
	"formulab/mocks"
)

// storedFormula parses the shared sheet fixture into a catalog record.
func storedFormula(t *testing.T) *domain.Formula {
	t.Helper()
	pipe, _ := newPipeline(t)
	result, err := pipe.Parse(context.Background(), sheetText, buildOpts())
	require.NoError(t, err)
	return result.Formula
}

func newOrderService(t *testing.T) (service.OrderService, *orderMocks) {
	t.Helper()
	m := &orderMocks{
		orders:   new(mocks.MockOrderRepo),
		formulas: new(mocks.MockFormulaRepo),
		docs:     new(mocks.MockDocumentGenerator),
		store:    new(mocks.MockArtifactStore),
		notifier: new(mocks.MockNotifier),
	}
	pipe, _ := newPipeline(t)
	svc := service.NewOrderService(m.orders, m.formulas, pipe, m.docs, m.store, m.notifier)
	return svc, m
}

type orderMocks struct {
	orders   *mocks.MockOrderRepo
	formulas *mocks.MockFormulaRepo
	docs     *mocks.MockDocumentGenerator
	store    *mocks.MockArtifactStore
	notifier *mocks.MockNotifier
}

func TestOrderService_Create_FullFlow(t *testing.T) {
	svc, m := newOrderService(t)
	formula := storedFormula(t)

	m.formulas.On("GetByKey", mock.Anything, formula.Key).Return(formula, nil)
	m.orders.On("CountByPrefix", mock.Anything, mock.AnythingOfType("string")).Return(2, nil)
	m.docs.On("ProductionOrder", mock.Anything, mock.AnythingOfType("*domain.Formula"), mock.AnythingOfType("*domain.Order")).Return([]byte("xlsx-bytes"), nil)
	m.store.On("Put", mock.Anything, mock.AnythingOfType("port.PutInput")).Return(&port.PutOutput{Ref: "ordenes/doc.xlsx"}, nil)
	m.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	m.notifier.On("NotifyOrderCreated", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, issues, err := svc.Create(context.Background(), &service.CreateOrderInput{
		FormulaKey: formula.Key,
		TargetGal:  dec("5"),
		CreatedBy:  "operador",
	})

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Empty(t, issues)

	// Third order of the day: sequence continues from the stored count.
	wantPrefix := "ORD-" + time.Now().Format("20060102") + "-"
	assert.Equal(t, wantPrefix+"0003", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "ordenes/doc.xlsx", order.DocumentRef)
	assert.Equal(t, formula.Key, order.FormulaKey)
	m.orders.AssertExpectations(t)
	m.notifier.AssertExpectations(t)

	// The generator received the scaled batch, not the master.
	scaled := m.docs.Calls[0].Arguments.Get(1).(*domain.Formula)
	assert.True(t, scaled.TotalVolume().Equal(dec("5")), scaled.TotalVolume())
}

func TestOrderService_Create_FormulaNotFound(t *testing.T) {
	svc, m := newOrderService(t)

	m.formulas.On("GetByKey", mock.Anything, "IN-XX-NADA").Return(nil, domain.ErrNotFound)

	order, _, err := svc.Create(context.Background(), &service.CreateOrderInput{
		FormulaKey: "IN-XX-NADA",
		TargetGal:  dec("5"),
	})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Create_NonPositiveTarget(t *testing.T) {
	svc, m := newOrderService(t)
	formula := storedFormula(t)

	m.formulas.On("GetByKey", mock.Anything, formula.Key).Return(formula, nil)

	order, _, err := svc.Create(context.Background(), &service.CreateOrderInput{
		FormulaKey: formula.Key,
		TargetGal:  dec("0"),
	})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNonPositiveTarget)
}

func TestOrderService_MarkProduced_Pending(t *testing.T) {
	svc, m := newOrderService(t)

	stored := &domain.Order{ID: "ORD-20260826-0001", Status: domain.OrderStatusPending}
	m.orders.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
	m.orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	m.notifier.On("NotifyOrderProduced", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.MarkProduced(context.Background(), stored.ID, &service.ProduceInput{
		MeasuredWPV: dec("1.19"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProduced, order.Status)
	assert.True(t, order.MeasuredWPV.Equal(dec("1.19")))
	m.notifier.AssertExpectations(t)
}

func TestOrderService_MarkProduced_RejectsNonPending(t *testing.T) {
	svc, m := newOrderService(t)

	stored := &domain.Order{ID: "ORD-20260826-0002", Status: domain.OrderStatusCancelled}
	m.orders.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

	order, err := svc.MarkProduced(context.Background(), stored.ID, &service.ProduceInput{})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
	m.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_Cancel_Pending(t *testing.T) {
	svc, m := newOrderService(t)

	stored := &domain.Order{ID: "ORD-20260826-0003", Status: domain.OrderStatusPending}
	m.orders.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
	m.orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Cancel(context.Background(), stored.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestOrderService_Cancel_RejectsProduced(t *testing.T) {
	svc, m := newOrderService(t)

	stored := &domain.Order{ID: "ORD-20260826-0004", Status: domain.OrderStatusProduced}
	m.orders.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)

	_, err := svc.Cancel(context.Background(), stored.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
}

func TestOrderService_Document_Streams(t *testing.T) {
	svc, m := newOrderService(t)

	stored := &domain.Order{ID: "ORD-20260826-0005", Status: domain.OrderStatusPending, CreatedAt: time.Now()}
	m.orders.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
	m.store.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(io.NopCloser(strings.NewReader("doc")), nil)

	rc, err := svc.Document(context.Background(), stored.ID)

	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(data))
}

package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newOrderService(db *gorm.DB) *service.OrderService {
	numberSvc := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	return service.NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewProjectRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewServiceRepository(db),
		numberSvc,
		zap.NewNop(),
	)
}

func createOrder(t *testing.T, svc *service.OrderService, companyID uuid.UUID) *domain.OrderDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), &domain.CreateOrderRequest{
		CompanyID: companyID,
		Title:     "Platform build",
	})
	require.NoError(t, err)
	return dto
}

func advanceOrder(t *testing.T, svc *service.OrderService, id uuid.UUID, statuses ...domain.OrderStatus) {
	t.Helper()
	for _, status := range statuses {
		_, err := svc.UpdateStatus(context.Background(), id, &domain.UpdateOrderStatusRequest{Status: status})
		require.NoError(t, err)
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)

	t.Run("starts as draft with a generated number", func(t *testing.T) {
		dto := createOrder(t, svc, company.ID)
		assert.Equal(t, domain.OrderStatusDraft, dto.Status)
		assert.Equal(t, domain.OrderPriorityMedium, dto.Priority)
		assert.Contains(t, dto.OrderNumber, "ORD-")
	})

	t.Run("rejects unknown companies", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateOrderRequest{CompanyID: uuid.New(), Title: "Ghost"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestOrderService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("draft cannot jump to completed", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOrderService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		order := createOrder(t, svc, company.ID)

		_, err := svc.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderStatusCompleted})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("work can pause and resume", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOrderService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		order := createOrder(t, svc, company.ID)

		advanceOrder(t, svc, order.ID,
			domain.OrderStatusConfirmed,
			domain.OrderStatusInProgress,
			domain.OrderStatusOnHold,
			domain.OrderStatusInProgress,
		)

		refreshed, err := svc.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusInProgress, refreshed.Status)
	})

	t.Run("completion fills progress and end date", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOrderService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		order := createOrder(t, svc, company.ID)

		advanceOrder(t, svc, order.ID,
			domain.OrderStatusConfirmed,
			domain.OrderStatusInProgress,
			domain.OrderStatusCompleted,
		)

		refreshed, err := svc.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, refreshed.ProgressPercentage)
		assert.NotNil(t, refreshed.EndDate)
	})

	t.Run("cancelled orders stay cancelled", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOrderService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		order := createOrder(t, svc, company.ID)

		advanceOrder(t, svc, order.ID, domain.OrderStatusCancelled)

		_, err := svc.UpdateStatus(ctx, order.ID, &domain.UpdateOrderStatusRequest{Status: domain.OrderStatusConfirmed})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestOrderService_InProgressDerivesProject(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
	consulting := createService(t, db, "CONS", domain.ServiceTypeSimple, 500)

	order := createOrder(t, svc, company.ID)
	_, err := svc.AddItem(ctx, order.ID, &domain.AddOrderItemRequest{
		ServiceID: consulting.ID,
		Quantity:  4,
	})
	require.NoError(t, err)

	advanceOrder(t, svc, order.ID, domain.OrderStatusConfirmed, domain.OrderStatusInProgress)

	var project domain.Project
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&project).Error)
	assert.Equal(t, domain.ProjectStatusPlanning, project.Status)
	assert.Equal(t, order.Title, project.Name)
	assert.Equal(t, 2000.0, project.Budget)
	assert.Contains(t, project.Code, "PRJ-")

	// Resuming from on_hold must not derive a second project
	advanceOrder(t, svc, order.ID, domain.OrderStatusOnHold, domain.OrderStatusInProgress)

	var count int64
	require.NoError(t, db.Model(&domain.Project{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderService_Items(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
	consulting := createService(t, db, "CONS", domain.ServiceTypeSimple, 100)

	order := createOrder(t, svc, company.ID)

	item, err := svc.AddItem(ctx, order.ID, &domain.AddOrderItemRequest{
		ServiceID:       consulting.ID,
		Quantity:        2,
		DiscountPercent: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, item.UnitPrice)

	refreshed, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, refreshed.TotalAmount) // 2*100 less 50%

	require.NoError(t, svc.RemoveItem(ctx, order.ID, item.ID))

	refreshed, err = svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, refreshed.TotalAmount)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOrderService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)

	t.Run("draft orders can be deleted", func(t *testing.T) {
		order := createOrder(t, svc, company.ID)
		require.NoError(t, svc.Delete(ctx, order.ID))

		_, err := svc.GetByID(ctx, order.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("confirmed orders cannot be deleted", func(t *testing.T) {
		order := createOrder(t, svc, company.ID)
		advanceOrder(t, svc, order.ID, domain.OrderStatusConfirmed)

		err := svc.Delete(ctx, order.ID)
		assert.ErrorIs(t, err, service.ErrNotEditable)
	})
}

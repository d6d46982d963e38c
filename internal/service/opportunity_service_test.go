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

func newOpportunityService(db *gorm.DB) *service.OpportunityService {
	numberSvc := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	return service.NewOpportunityService(
		db,
		repository.NewOpportunityRepository(db),
		repository.NewOrderRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewServiceRepository(db),
		numberSvc,
		zap.NewNop(),
	)
}

func createOpportunity(t *testing.T, db *gorm.DB, svc *service.OpportunityService, companyID uuid.UUID) *domain.OpportunityDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), &domain.CreateOpportunityRequest{
		CompanyID:      companyID,
		Title:          "New website",
		WinProbability: 50,
	})
	require.NoError(t, err)
	return dto
}

func advanceOpportunity(t *testing.T, svc *service.OpportunityService, id uuid.UUID, statuses ...domain.OpportunityStatus) {
	t.Helper()
	for _, status := range statuses {
		_, err := svc.UpdateStatus(context.Background(), id, &domain.UpdateOpportunityStatusRequest{Status: status})
		require.NoError(t, err)
	}
}

func TestOpportunityService_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOpportunityService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)

	t.Run("starts as lead with a generated code", func(t *testing.T) {
		dto := createOpportunity(t, db, svc, company.ID)
		assert.Equal(t, domain.OpportunityStatusLead, dto.Status)
		assert.Contains(t, dto.Code, "OPP-")
	})

	t.Run("rejects unknown companies", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateOpportunityRequest{
			CompanyID: uuid.New(),
			Title:     "Ghost deal",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestOpportunityService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("follows the pipeline order", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOpportunityService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		opp := createOpportunity(t, db, svc, company.ID)

		advanceOpportunity(t, svc, opp.ID,
			domain.OpportunityStatusQualified,
			domain.OpportunityStatusProposal,
			domain.OpportunityStatusNegotiation,
			domain.OpportunityStatusWon,
		)

		won, err := svc.GetByID(ctx, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OpportunityStatusWon, won.Status)
		assert.NotNil(t, won.ActualCloseDate)
	})

	t.Run("cannot skip ahead to won", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOpportunityService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		opp := createOpportunity(t, db, svc, company.ID)

		_, err := svc.UpdateStatus(ctx, opp.ID, &domain.UpdateOpportunityStatusRequest{Status: domain.OpportunityStatusWon})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("lost is reachable from any active stage", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOpportunityService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		opp := createOpportunity(t, db, svc, company.ID)

		lost, err := svc.UpdateStatus(ctx, opp.ID, &domain.UpdateOpportunityStatusRequest{
			Status:      domain.OpportunityStatusLost,
			CloseReason: "went with a competitor",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OpportunityStatusLost, lost.Status)
		assert.Equal(t, "went with a competitor", lost.CloseReason)
	})

	t.Run("terminal opportunities stay terminal", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOpportunityService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		opp := createOpportunity(t, db, svc, company.ID)

		advanceOpportunity(t, svc, opp.ID, domain.OpportunityStatusLost)

		_, err := svc.UpdateStatus(ctx, opp.ID, &domain.UpdateOpportunityStatusRequest{Status: domain.OpportunityStatusQualified})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("terminal opportunities are not editable", func(t *testing.T) {
		db := newTestDB(t)
		svc := newOpportunityService(db)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		opp := createOpportunity(t, db, svc, company.ID)

		advanceOpportunity(t, svc, opp.ID, domain.OpportunityStatusLost)

		_, err := svc.Update(ctx, opp.ID, &domain.UpdateOpportunityRequest{Title: "Renamed"})
		assert.ErrorIs(t, err, service.ErrNotEditable)
	})
}

func TestOpportunityService_WinDerivesOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOpportunityService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
	consulting := createService(t, db, "CONS", domain.ServiceTypeSimple, 100)

	opp := createOpportunity(t, db, svc, company.ID)
	_, err := svc.AddItem(ctx, opp.ID, &domain.AddOpportunityItemRequest{
		ServiceID:       consulting.ID,
		Quantity:        3,
		DiscountPercent: 10,
	})
	require.NoError(t, err)

	advanceOpportunity(t, svc, opp.ID,
		domain.OpportunityStatusQualified,
		domain.OpportunityStatusProposal,
		domain.OpportunityStatusNegotiation,
		domain.OpportunityStatusWon,
	)

	var order domain.Order
	require.NoError(t, db.Preload("Items").Where("opportunity_id = ?", opp.ID).First(&order).Error)

	assert.Equal(t, domain.OrderStatusDraft, order.Status)
	assert.Equal(t, company.ID, order.CompanyID)
	assert.Equal(t, opp.Title, order.Title)
	assert.Contains(t, order.OrderNumber, "ORD-")
	require.Len(t, order.Items, 1)
	assert.Equal(t, consulting.ID, order.Items[0].ServiceID)
	assert.Equal(t, 3.0, order.Items[0].Quantity)
	assert.InDelta(t, 270.0, order.TotalAmount, 0.001) // 3*100 less 10%

	// Exactly one order exists for the opportunity
	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Where("opportunity_id = ?", opp.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpportunityService_Items(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOpportunityService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
	consulting := createService(t, db, "CONS", domain.ServiceTypeSimple, 100)

	opp := createOpportunity(t, db, svc, company.ID)

	t.Run("item defaults to the catalog price and syncs the amount", func(t *testing.T) {
		item, err := svc.AddItem(ctx, opp.ID, &domain.AddOpportunityItemRequest{
			ServiceID: consulting.ID,
			Quantity:  2,
		})
		require.NoError(t, err)
		assert.Equal(t, 100.0, item.UnitPrice)
		assert.Equal(t, 200.0, item.Total)

		refreshed, err := svc.GetByID(ctx, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, 200.0, refreshed.Amount)
	})

	t.Run("removing an item resyncs the amount", func(t *testing.T) {
		refreshed, err := svc.GetByID(ctx, opp.ID)
		require.NoError(t, err)
		require.Len(t, refreshed.Items, 1)

		require.NoError(t, svc.RemoveItem(ctx, opp.ID, refreshed.Items[0].ID))

		refreshed, err = svc.GetByID(ctx, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, refreshed.Amount)
	})

	t.Run("item from another opportunity is not found", func(t *testing.T) {
		other := createOpportunity(t, db, svc, company.ID)
		item, err := svc.AddItem(ctx, other.ID, &domain.AddOpportunityItemRequest{
			ServiceID: consulting.ID,
			Quantity:  1,
		})
		require.NoError(t, err)

		err = svc.RemoveItem(ctx, opp.ID, item.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestOpportunityService_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newOpportunityService(db)
	company := createCompany(t, db, "Acme", domain.CompanyTypeClient)

	t.Run("deletes an open opportunity", func(t *testing.T) {
		opp := createOpportunity(t, db, svc, company.ID)
		require.NoError(t, svc.Delete(ctx, opp.ID))

		_, err := svc.GetByID(ctx, opp.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("won opportunities cannot be deleted", func(t *testing.T) {
		opp := createOpportunity(t, db, svc, company.ID)
		advanceOpportunity(t, svc, opp.ID,
			domain.OpportunityStatusQualified,
			domain.OpportunityStatusProposal,
			domain.OpportunityStatusNegotiation,
			domain.OpportunityStatusWon,
		)

		err := svc.Delete(ctx, opp.ID)
		assert.ErrorIs(t, err, service.ErrNotEditable)
	})
}

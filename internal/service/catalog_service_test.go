package service_test

import (
	"context"
	"testing"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCatalogService(db *gorm.DB) *service.CatalogService {
	return service.NewCatalogService(repository.NewServiceRepository(db), zap.NewNop())
}

func TestCatalogService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a simple service with defaults", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)

		dto, err := svc.Create(ctx, &domain.CreateServiceRequest{
			Code:      "CONS-001",
			Name:      "Consulting day",
			UnitPrice: 800,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ServiceTypeSimple, dto.Type)
		assert.Equal(t, domain.BillingTypeFixed, dto.BillingType)
		assert.True(t, dto.IsActive)
	})

	t.Run("rejects duplicate codes", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)

		_, err := svc.Create(ctx, &domain.CreateServiceRequest{Code: "CONS-001", Name: "First"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, &domain.CreateServiceRequest{Code: "CONS-001", Name: "Second"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("rejects unknown service type", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)

		_, err := svc.Create(ctx, &domain.CreateServiceRequest{Code: "X", Name: "X", Type: "bundle"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestCatalogService_EffectivePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("simple service returns its unit price", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		simple := createService(t, db, "SIMPLE", domain.ServiceTypeSimple, 42)

		dto, err := svc.EffectivePrice(ctx, simple.ID)
		require.NoError(t, err)
		assert.Equal(t, 42.0, dto.EffectivePrice)
	})

	t.Run("kit sums quantity-weighted component prices", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		kit := createService(t, db, "KIT", domain.ServiceTypeKit, 0)
		compA := createService(t, db, "A", domain.ServiceTypeSimple, 10)
		compB := createService(t, db, "B", domain.ServiceTypeSimple, 15)

		_, err := svc.AddComponent(ctx, kit.ID, &domain.AddCompositionRequest{ChildServiceID: compA.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = svc.AddComponent(ctx, kit.ID, &domain.AddCompositionRequest{ChildServiceID: compB.ID, Quantity: 1})
		require.NoError(t, err)

		dto, err := svc.EffectivePrice(ctx, kit.ID)
		require.NoError(t, err)
		assert.Equal(t, 35.0, dto.EffectivePrice) // 2*10 + 1*15
	})

	t.Run("component price override wins over the child price", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		kit := createService(t, db, "KIT", domain.ServiceTypeKit, 0)
		comp := createService(t, db, "A", domain.ServiceTypeSimple, 10)

		override := 7.5
		_, err := svc.AddComponent(ctx, kit.ID, &domain.AddCompositionRequest{
			ChildServiceID:    comp.ID,
			Quantity:          2,
			UnitPriceOverride: &override,
		})
		require.NoError(t, err)

		dto, err := svc.EffectivePrice(ctx, kit.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, dto.EffectivePrice)
	})

	t.Run("nested kits resolve recursively", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		outer := createService(t, db, "OUTER", domain.ServiceTypeKit, 0)
		inner := createService(t, db, "INNER", domain.ServiceTypeKit, 0)
		leaf := createService(t, db, "LEAF", domain.ServiceTypeSimple, 5)

		_, err := svc.AddComponent(ctx, inner.ID, &domain.AddCompositionRequest{ChildServiceID: leaf.ID, Quantity: 3})
		require.NoError(t, err)
		_, err = svc.AddComponent(ctx, outer.ID, &domain.AddCompositionRequest{ChildServiceID: inner.ID, Quantity: 2})
		require.NoError(t, err)

		dto, err := svc.EffectivePrice(ctx, outer.ID)
		require.NoError(t, err)
		assert.Equal(t, 30.0, dto.EffectivePrice) // 2 * (3*5)
	})
}

func TestCatalogService_KitCycles(t *testing.T) {
	ctx := context.Background()

	t.Run("kit cannot contain itself", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		kit := createService(t, db, "KIT", domain.ServiceTypeKit, 0)

		_, err := svc.AddComponent(ctx, kit.ID, &domain.AddCompositionRequest{ChildServiceID: kit.ID, Quantity: 1})
		assert.ErrorIs(t, err, service.ErrKitCycle)
	})

	t.Run("indirect cycles are rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		kitA := createService(t, db, "KIT-A", domain.ServiceTypeKit, 0)
		kitB := createService(t, db, "KIT-B", domain.ServiceTypeKit, 0)

		_, err := svc.AddComponent(ctx, kitA.ID, &domain.AddCompositionRequest{ChildServiceID: kitB.ID, Quantity: 1})
		require.NoError(t, err)

		_, err = svc.AddComponent(ctx, kitB.ID, &domain.AddCompositionRequest{ChildServiceID: kitA.ID, Quantity: 1})
		assert.ErrorIs(t, err, service.ErrKitCycle)
	})

	t.Run("only kits accept components", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		simple := createService(t, db, "SIMPLE", domain.ServiceTypeSimple, 10)
		other := createService(t, db, "OTHER", domain.ServiceTypeSimple, 5)

		_, err := svc.AddComponent(ctx, simple.ID, &domain.AddCompositionRequest{ChildServiceID: other.ID, Quantity: 1})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestCatalogService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unreferenced service", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		simple := createService(t, db, "SIMPLE", domain.ServiceTypeSimple, 10)

		require.NoError(t, svc.Delete(ctx, simple.ID))

		_, err := svc.GetByID(ctx, simple.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("refuses to delete a kit component", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		kit := createService(t, db, "KIT", domain.ServiceTypeKit, 0)
		comp := createService(t, db, "COMP", domain.ServiceTypeSimple, 10)

		_, err := svc.AddComponent(ctx, kit.ID, &domain.AddCompositionRequest{ChildServiceID: comp.ID, Quantity: 1})
		require.NoError(t, err)

		err = svc.Delete(ctx, comp.ID)
		assert.ErrorIs(t, err, service.ErrServiceInUse)
	})

	t.Run("refuses to delete a service on a line item", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCatalogService(db)
		simple := createService(t, db, "SIMPLE", domain.ServiceTypeSimple, 10)
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)

		opp := &domain.Opportunity{
			Code:      "OPP-2026-0001",
			CompanyID: company.ID,
			Title:     "Deal",
			Status:    domain.OpportunityStatusLead,
		}
		require.NoError(t, db.Create(opp).Error)
		require.NoError(t, db.Create(&domain.OpportunityService{
			OpportunityID: opp.ID,
			ServiceID:     simple.ID,
			Quantity:      1,
			UnitPrice:     10,
		}).Error)

		err := svc.Delete(ctx, simple.ID)
		assert.ErrorIs(t, err, service.ErrServiceInUse)
	})
}

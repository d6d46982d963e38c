package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNumberSequenceService(db *gorm.DB) *service.NumberSequenceService {
	return service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
}

func TestNumberSequenceService_Generate(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("formats the first number of a prefix", func(t *testing.T) {
		db := newTestDB(t)
		svc := newNumberSequenceService(db)

		number, err := svc.Generate(ctx, service.PrefixOpportunity)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("OPP-%d-0001", year), number)
	})

	t.Run("increments within a prefix", func(t *testing.T) {
		db := newTestDB(t)
		svc := newNumberSequenceService(db)

		first, err := svc.Generate(ctx, service.PrefixOrder)
		require.NoError(t, err)
		second, err := svc.Generate(ctx, service.PrefixOrder)
		require.NoError(t, err)

		assert.Equal(t, fmt.Sprintf("ORD-%d-0001", year), first)
		assert.Equal(t, fmt.Sprintf("ORD-%d-0002", year), second)
	})

	t.Run("prefixes count independently", func(t *testing.T) {
		db := newTestDB(t)
		svc := newNumberSequenceService(db)

		_, err := svc.Generate(ctx, service.PrefixOpportunity)
		require.NoError(t, err)
		_, err = svc.Generate(ctx, service.PrefixOpportunity)
		require.NoError(t, err)

		number, err := svc.Generate(ctx, service.PrefixProject)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PRJ-%d-0001", year), number)

		current, err := svc.GetCurrentSequence(ctx, service.PrefixOpportunity, year)
		require.NoError(t, err)
		assert.Equal(t, 2, current)
	})

	t.Run("generateTx rolls back with the enclosing transaction", func(t *testing.T) {
		db := newTestDB(t)
		svc := newNumberSequenceService(db)

		err := db.Transaction(func(tx *gorm.DB) error {
			if _, err := svc.GenerateTx(tx, service.PrefixOrder); err != nil {
				return err
			}
			return gorm.ErrInvalidTransaction
		})
		require.Error(t, err)

		current, err := svc.GetCurrentSequence(ctx, service.PrefixOrder, year)
		require.NoError(t, err)
		assert.Equal(t, 0, current)
	})
}

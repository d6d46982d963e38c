package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newMilestoneService(db *gorm.DB) *service.MilestoneService {
	return service.NewMilestoneService(
		repository.NewMilestoneRepository(db),
		repository.NewProjectRepository(db),
		zap.NewNop(),
	)
}

func TestMilestoneService_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMilestoneService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	t.Run("starts pending with a default type", func(t *testing.T) {
		dto, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "First delivery"})
		require.NoError(t, err)
		assert.Equal(t, domain.MilestoneStatusPending, dto.Status)
		assert.Equal(t, domain.MilestoneTypeDeliverable, dto.Type)
		assert.False(t, dto.IsOverdue)
	})

	t.Run("flags past due dates as overdue", func(t *testing.T) {
		due := time.Now().AddDate(0, 0, -3)
		dto, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{
			Name:    "Late delivery",
			DueDate: &due,
		})
		require.NoError(t, err)
		assert.True(t, dto.IsOverdue)
	})

	t.Run("unknown projects are not found", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), &domain.CreateMilestoneRequest{Name: "Orphan"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestMilestoneService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMilestoneService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	t.Run("completing records the completion date", func(t *testing.T) {
		milestone, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "Delivery"})
		require.NoError(t, err)

		dto, err := svc.UpdateStatus(ctx, project.ID, milestone.ID, &domain.UpdateMilestoneStatusRequest{
			Status: domain.MilestoneStatusCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MilestoneStatusCompleted, dto.Status)
		assert.NotNil(t, dto.CompletedDate)
	})

	t.Run("terminal milestones cannot move", func(t *testing.T) {
		milestone, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "Done"})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, project.ID, milestone.ID, &domain.UpdateMilestoneStatusRequest{
			Status: domain.MilestoneStatusCompleted,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, project.ID, milestone.ID, &domain.UpdateMilestoneStatusRequest{
			Status: domain.MilestoneStatusInProgress,
		})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("milestones of another project are not found", func(t *testing.T) {
		other := createProject(t, db, "Other", domain.ProjectStatusInProgress)
		milestone, err := svc.Create(ctx, other.ID, &domain.CreateMilestoneRequest{Name: "Elsewhere"})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, project.ID, milestone.ID, &domain.UpdateMilestoneStatusRequest{
			Status: domain.MilestoneStatusInProgress,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestMilestoneService_SweepOverdue(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMilestoneService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
	now := time.Now()

	pastDue := now.AddDate(0, 0, -2)
	futureDue := now.AddDate(0, 0, 2)

	overduePending, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "Overdue pending", DueDate: &pastDue})
	require.NoError(t, err)

	overdueStarted, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "Overdue started", DueDate: &pastDue})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, project.ID, overdueStarted.ID, &domain.UpdateMilestoneStatusRequest{Status: domain.MilestoneStatusInProgress})
	require.NoError(t, err)

	onTime, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "On time", DueDate: &futureDue})
	require.NoError(t, err)

	completedLate, err := svc.Create(ctx, project.ID, &domain.CreateMilestoneRequest{Name: "Completed late", DueDate: &pastDue})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, project.ID, completedLate.ID, &domain.UpdateMilestoneStatusRequest{Status: domain.MilestoneStatusCompleted})
	require.NoError(t, err)

	swept, err := svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)

	for _, tc := range []struct {
		id     uuid.UUID
		expect domain.MilestoneStatus
	}{
		{overduePending.ID, domain.MilestoneStatusMissed},
		{overdueStarted.ID, domain.MilestoneStatusMissed},
		{onTime.ID, domain.MilestoneStatusPending},
		{completedLate.ID, domain.MilestoneStatusCompleted},
	} {
		dto, err := svc.GetByID(ctx, project.ID, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.expect, dto.Status)
	}

	// A second sweep finds nothing left to do
	swept, err = svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

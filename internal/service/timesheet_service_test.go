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

func newTimesheetService(db *gorm.DB) *service.TimesheetService {
	return service.NewTimesheetService(
		repository.NewTimesheetRepository(db),
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		zap.NewNop(),
	)
}

func createTimesheet(t *testing.T, svc *service.TimesheetService, projectID, userID uuid.UUID, taskID *uuid.UUID, hours, rate float64) *domain.TimesheetDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), projectID, &domain.CreateTimesheetRequest{
		TaskID:     taskID,
		UserID:     userID,
		WorkDate:   *dateOf(2026, 8, 24),
		Hours:      hours,
		HourlyRate: rate,
	})
	require.NoError(t, err)
	return dto
}

func TestTimesheetService_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTimesheetService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
	user := createUser(t, db, "worker@noscite.it", domain.RoleUser)

	t.Run("starts as a billable draft", func(t *testing.T) {
		dto := createTimesheet(t, svc, project.ID, user.ID, nil, 8, 50)
		assert.Equal(t, domain.TimesheetStatusDraft, dto.Status)
		assert.True(t, dto.IsBillable)
		assert.Equal(t, 400.0, dto.TotalCost)
	})

	t.Run("task must belong to the project", func(t *testing.T) {
		other := createProject(t, db, "Other", domain.ProjectStatusInProgress)
		foreignTask := &domain.Task{
			ProjectID: other.ID,
			WBSCode:   "1",
			Name:      "Foreign",
			Status:    domain.TaskStatusTodo,
			Priority:  domain.TaskPriorityMedium,
		}
		require.NoError(t, db.Create(foreignTask).Error)

		_, err := svc.Create(ctx, project.ID, &domain.CreateTimesheetRequest{
			TaskID:   &foreignTask.ID,
			UserID:   user.ID,
			WorkDate: *dateOf(2026, 8, 24),
			Hours:    4,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestTimesheetService_ApprovalFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newTimesheetService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
	user := createUser(t, db, "worker@noscite.it", domain.RoleUser)

	t.Run("draft must be submitted before approval", func(t *testing.T) {
		entry := createTimesheet(t, svc, project.ID, user.ID, nil, 8, 50)

		_, err := svc.UpdateStatus(ctxWithRoles(domain.RoleManager), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusApproved,
		})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("approval needs an approver role", func(t *testing.T) {
		entry := createTimesheet(t, svc, project.ID, user.ID, nil, 8, 50)

		_, err := svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusSubmitted,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusApproved,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("approval stamps the approver and refreshes actuals", func(t *testing.T) {
		taskSvc := newTaskService(db)
		task, err := taskSvc.Create(context.Background(), project.ID, &domain.CreateTaskRequest{Name: "Build"})
		require.NoError(t, err)

		entry := createTimesheet(t, svc, project.ID, user.ID, &task.ID, 6, 80)

		_, err = svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusSubmitted,
		})
		require.NoError(t, err)

		approved, err := svc.UpdateStatus(ctxWithRoles(domain.RoleProjectManager), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusApproved,
		})
		require.NoError(t, err)
		assert.NotNil(t, approved.ApprovedByID)
		assert.NotNil(t, approved.ApprovedAt)

		refreshedTask, err := taskSvc.GetByID(context.Background(), project.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 6.0, refreshedTask.ActualHours)

		var refreshedProject domain.Project
		require.NoError(t, db.First(&refreshedProject, "id = ?", project.ID).Error)
		assert.Equal(t, 480.0, refreshedProject.ActualCost)
	})

	t.Run("rejected entries can be edited and resubmitted", func(t *testing.T) {
		entry := createTimesheet(t, svc, project.ID, user.ID, nil, 8, 50)

		_, err := svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusSubmitted,
		})
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctxWithRoles(domain.RoleManager), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusRejected,
		})
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), project.ID, entry.ID, &domain.UpdateTimesheetRequest{
			WorkDate: *dateOf(2026, 8, 25),
			Hours:    7,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusSubmitted,
		})
		require.NoError(t, err)
	})

	t.Run("approved entries are locked", func(t *testing.T) {
		entry := createTimesheet(t, svc, project.ID, user.ID, nil, 8, 50)

		_, err := svc.UpdateStatus(ctxWithRoles(domain.RoleUser), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusSubmitted,
		})
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctxWithRoles(domain.RoleManager), project.ID, entry.ID, &domain.UpdateTimesheetStatusRequest{
			Status: domain.TimesheetStatusApproved,
		})
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), project.ID, entry.ID, &domain.UpdateTimesheetRequest{
			WorkDate: *dateOf(2026, 8, 25),
			Hours:    1,
		})
		assert.ErrorIs(t, err, service.ErrNotEditable)

		err = svc.Delete(context.Background(), project.ID, entry.ID)
		assert.ErrorIs(t, err, service.ErrNotEditable)
	})
}

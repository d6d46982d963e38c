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

func newProjectService(db *gorm.DB) *service.ProjectService {
	numberSvc := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	return service.NewProjectService(
		db,
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
		repository.NewMilestoneRepository(db),
		repository.NewTimesheetRepository(db),
		numberSvc,
		zap.NewNop(),
	)
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newProjectService(db)

	t.Run("starts in planning with a generated code", func(t *testing.T) {
		dto, err := svc.Create(ctx, &domain.CreateProjectRequest{Name: "Website relaunch"})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusPlanning, dto.Status)
		assert.Equal(t, domain.MethodologyWaterfall, dto.Methodology)
		assert.Contains(t, dto.Code, "PRJ-")
	})

	t.Run("an order can back at most one project", func(t *testing.T) {
		company := createCompany(t, db, "Acme", domain.CompanyTypeClient)
		order := &domain.Order{
			OrderNumber: "ORD-2026-9001",
			CompanyID:   company.ID,
			Title:       "Backing order",
			Status:      domain.OrderStatusInProgress,
			Priority:    domain.OrderPriorityMedium,
		}
		require.NoError(t, db.Create(order).Error)

		_, err := svc.Create(ctx, &domain.CreateProjectRequest{Name: "First", OrderID: &order.ID})
		require.NoError(t, err)

		_, err = svc.Create(ctx, &domain.CreateProjectRequest{Name: "Second", OrderID: &order.ID})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestProjectService_CreateFromSkeleton(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newProjectService(db)

	t.Run("creates the project, task tree and milestones", func(t *testing.T) {
		due := *dateOf(2026, 10, 1)
		dto, err := svc.CreateFromSkeleton(ctx, &domain.ProjectSkeleton{
			Name:        "ERP rollout",
			Description: "Extracted from kickoff deck",
			Tasks: []domain.SkeletonTask{
				{Name: "Analysis", EstimatedHours: 40},
				{Name: "Implementation", Children: []domain.SkeletonTask{
					{Name: "Backend", EstimatedHours: 80},
					{Name: "Frontend", EstimatedHours: 60},
				}},
			},
			Milestones: []domain.SkeletonMilestone{
				{Name: "Kickoff", Type: domain.MilestoneTypeKickoff},
				{Name: "Go live", Type: domain.MilestoneTypeGoLive, DueDate: &due},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusPlanning, dto.Status)
		assert.Contains(t, dto.Code, "PRJ-")

		var tasks []domain.Task
		require.NoError(t, db.Where("project_id = ?", dto.ID).Order("wbs_code").Find(&tasks).Error)
		require.Len(t, tasks, 4)
		codes := make(map[string]string)
		for _, task := range tasks {
			codes[task.WBSCode] = task.Name
		}
		assert.Equal(t, "Analysis", codes["1"])
		assert.Equal(t, "Implementation", codes["2"])
		assert.Equal(t, "Backend", codes["2.1"])
		assert.Equal(t, "Frontend", codes["2.2"])

		var milestones []domain.Milestone
		require.NoError(t, db.Where("project_id = ?", dto.ID).Find(&milestones).Error)
		require.Len(t, milestones, 2)
		for _, milestone := range milestones {
			assert.Equal(t, domain.MilestoneStatusPending, milestone.Status)
		}
	})

	t.Run("a bad skeleton creates nothing", func(t *testing.T) {
		_, err := svc.CreateFromSkeleton(ctx, &domain.ProjectSkeleton{
			Name: "Half-baked",
			Tasks: []domain.SkeletonTask{
				{Name: "Valid"},
				{Name: ""},
			},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		var count int64
		require.NoError(t, db.Model(&domain.Project{}).Where("name = ?", "Half-baked").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("skeleton without a name is rejected", func(t *testing.T) {
		_, err := svc.CreateFromSkeleton(ctx, &domain.ProjectSkeleton{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestProjectService_Transitions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newProjectService(db)

	t.Run("planning cannot jump to completed", func(t *testing.T) {
		project := createProject(t, db, "Delivery", domain.ProjectStatusPlanning)

		_, err := svc.Update(ctx, project.ID, &domain.UpdateProjectRequest{
			Name:   project.Name,
			Status: domain.ProjectStatusCompleted,
		})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("starting sets the actual start date", func(t *testing.T) {
		project := createProject(t, db, "Delivery", domain.ProjectStatusPlanning)

		dto, err := svc.Update(ctx, project.ID, &domain.UpdateProjectRequest{
			Name:   project.Name,
			Status: domain.ProjectStatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusInProgress, dto.Status)
		assert.NotNil(t, dto.ActualStartDate)
	})

	t.Run("completing sets the actual end date", func(t *testing.T) {
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		dto, err := svc.Update(ctx, project.ID, &domain.UpdateProjectRequest{
			Name:   project.Name,
			Status: domain.ProjectStatusCompleted,
		})
		require.NoError(t, err)
		assert.NotNil(t, dto.ActualEndDate)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newProjectService(db)

	t.Run("planning projects can be deleted", func(t *testing.T) {
		project := createProject(t, db, "Doomed", domain.ProjectStatusPlanning)
		require.NoError(t, svc.Delete(ctx, project.ID))
	})

	t.Run("running projects cannot be deleted", func(t *testing.T) {
		project := createProject(t, db, "Running", domain.ProjectStatusInProgress)
		err := svc.Delete(ctx, project.ID)
		assert.ErrorIs(t, err, service.ErrNotEditable)
	})
}

func TestProjectService_Rollup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newProjectService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
	user := createUser(t, db, "worker@noscite.it", domain.RoleUser)

	// Three completed out of four countable tasks; the cancelled one is ignored
	statuses := []domain.TaskStatus{
		domain.TaskStatusCompleted,
		domain.TaskStatusCompleted,
		domain.TaskStatusCompleted,
		domain.TaskStatusTodo,
		domain.TaskStatusCancelled,
	}
	for i, status := range statuses {
		require.NoError(t, db.Create(&domain.Task{
			ProjectID:      project.ID,
			WBSCode:        string(rune('1' + i)),
			Name:           "Task",
			Status:         status,
			Priority:       domain.TaskPriorityMedium,
			EstimatedHours: 10,
			SortOrder:      i,
		}).Error)
	}

	require.NoError(t, db.Create(&domain.Milestone{
		ProjectID: project.ID,
		Name:      "Kickoff",
		Type:      domain.MilestoneTypeKickoff,
		Status:    domain.MilestoneStatusCompleted,
	}).Error)
	require.NoError(t, db.Create(&domain.Milestone{
		ProjectID: project.ID,
		Name:      "Go live",
		Type:      domain.MilestoneTypeGoLive,
		Status:    domain.MilestoneStatusPending,
	}).Error)

	// Only the approved entry feeds hours and cost
	require.NoError(t, db.Create(&domain.Timesheet{
		ProjectID:  project.ID,
		UserID:     user.ID,
		WorkDate:   *dateOf(2026, 8, 20),
		Hours:      8,
		HourlyRate: 50,
		IsBillable: true,
		Status:     domain.TimesheetStatusApproved,
	}).Error)
	require.NoError(t, db.Create(&domain.Timesheet{
		ProjectID:  project.ID,
		UserID:     user.ID,
		WorkDate:   *dateOf(2026, 8, 21),
		Hours:      4,
		HourlyRate: 50,
		IsBillable: true,
		Status:     domain.TimesheetStatusDraft,
	}).Error)

	rollup, err := svc.Rollup(ctx, project.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, rollup.TotalTasks)
	assert.Equal(t, 3, rollup.CompletedTasks)
	assert.Equal(t, 75.0, rollup.ProgressPercentage)
	assert.Equal(t, 40.0, rollup.EstimatedHours)
	assert.Equal(t, 2, rollup.TotalMilestones)
	assert.Equal(t, 1, rollup.CompletedMilestones)
	assert.Equal(t, 8.0, rollup.ActualHours)
	assert.Equal(t, 400.0, rollup.ActualCost)

	// The rollup is persisted on the project
	refreshed, err := svc.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, refreshed.ProgressPercentage)
	assert.Equal(t, 400.0, refreshed.ActualCost)
}

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

func newTaskService(db *gorm.DB) *service.TaskService {
	return service.NewTaskService(
		db,
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		repository.NewTeamMemberRepository(db),
		zap.NewNop(),
	)
}

func createTask(t *testing.T, svc *service.TaskService, projectID uuid.UUID, name string, parentID *uuid.UUID) *domain.TaskDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), projectID, &domain.CreateTaskRequest{
		Name:         name,
		ParentTaskID: parentID,
	})
	require.NoError(t, err)
	return dto
}

func addTeamMember(t *testing.T, db *gorm.DB, projectID uuid.UUID, companyType domain.CompanyType, active bool) *domain.Company {
	t.Helper()
	company := createCompany(t, db, "Team "+uuid.NewString()[:4], companyType)
	member := &domain.TeamMember{
		ProjectID: projectID,
		CompanyID: company.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(member).Error)
	if !active {
		// is_active defaults to true, so gorm drops the zero value on insert;
		// flip it with an explicit update instead
		require.NoError(t, db.Model(member).Update("is_active", false).Error)
	}

	var stored domain.TeamMember
	require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	require.Equal(t, active, stored.IsActive)
	return company
}

func TestTaskService_WBSCodes(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTaskService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	design := createTask(t, svc, project.ID, "Design", nil)
	build := createTask(t, svc, project.ID, "Build", nil)
	wireframes := createTask(t, svc, project.ID, "Wireframes", &design.ID)
	mockups := createTask(t, svc, project.ID, "Mockups", &design.ID)

	assert.Equal(t, "1", design.WBSCode)
	assert.Equal(t, "2", build.WBSCode)
	assert.Equal(t, "1.1", wireframes.WBSCode)
	assert.Equal(t, "1.2", mockups.WBSCode)

	tree, err := svc.Tree(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Design", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "1.1", tree[0].Children[0].WBSCode)
}

func TestTaskService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("reparenting renumbers the tree", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		design := createTask(t, svc, project.ID, "Design", nil)
		build := createTask(t, svc, project.ID, "Build", nil)
		createTask(t, svc, project.ID, "Wireframes", &design.ID)

		tree, err := svc.Move(ctx, project.ID, build.ID, &domain.MoveTaskRequest{NewParentTaskID: &design.ID})
		require.NoError(t, err)

		require.Len(t, tree, 1)
		assert.Equal(t, "Design", tree[0].Name)
		require.Len(t, tree[0].Children, 2)
		assert.Equal(t, "1.1", tree[0].Children[0].WBSCode)
		assert.Equal(t, "1.2", tree[0].Children[1].WBSCode)
		assert.Equal(t, "Build", tree[0].Children[1].Name)
	})

	t.Run("position places the task among its new siblings", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		first := createTask(t, svc, project.ID, "First", nil)
		createTask(t, svc, project.ID, "Second", nil)
		third := createTask(t, svc, project.ID, "Third", nil)
		_ = first

		position := 0
		tree, err := svc.Move(ctx, project.ID, third.ID, &domain.MoveTaskRequest{Position: &position})
		require.NoError(t, err)

		require.Len(t, tree, 3)
		assert.Equal(t, "Third", tree[0].Name)
		assert.Equal(t, "1", tree[0].WBSCode)
		assert.Equal(t, "First", tree[1].Name)
		assert.Equal(t, "2", tree[1].WBSCode)
	})

	t.Run("moving under a descendant fails and changes nothing", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		design := createTask(t, svc, project.ID, "Design", nil)
		wireframes := createTask(t, svc, project.ID, "Wireframes", &design.ID)
		detail := createTask(t, svc, project.ID, "Detail", &wireframes.ID)

		_, err := svc.Move(ctx, project.ID, design.ID, &domain.MoveTaskRequest{NewParentTaskID: &detail.ID})
		assert.ErrorIs(t, err, service.ErrTaskCycle)

		tree, err := svc.Tree(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, "1", tree[0].WBSCode)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, "1.1", tree[0].Children[0].WBSCode)
	})

	t.Run("task cannot be its own parent", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		task := createTask(t, svc, project.ID, "Solo", nil)

		_, err := svc.Move(ctx, project.ID, task.ID, &domain.MoveTaskRequest{NewParentTaskID: &task.ID})
		assert.ErrorIs(t, err, service.ErrTaskCycle)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTaskService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	design := createTask(t, svc, project.ID, "Design", nil)
	createTask(t, svc, project.ID, "Wireframes", &design.ID)
	createTask(t, svc, project.ID, "Build", nil)

	require.NoError(t, svc.Delete(ctx, project.ID, design.ID))

	tree, err := svc.Tree(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Build", tree[0].Name)
	assert.Equal(t, "1", tree[0].WBSCode)

	var count int64
	require.NoError(t, db.Model(&domain.Task{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTaskService_StatusPropagation(t *testing.T) {
	ctx := context.Background()

	t.Run("completing propagates down when requested", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		design := createTask(t, svc, project.ID, "Design", nil)
		wireframes := createTask(t, svc, project.ID, "Wireframes", &design.ID)

		_, err := svc.Update(ctx, project.ID, design.ID, &domain.UpdateTaskRequest{
			Name:            design.Name,
			Status:          domain.TaskStatusCompleted,
			PropagateStatus: true,
		})
		require.NoError(t, err)

		child, err := svc.GetByID(ctx, project.ID, wireframes.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, child.Status)
		assert.Equal(t, 100.0, child.ProgressPercentage)
	})

	t.Run("completing the last child completes the parent", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		design := createTask(t, svc, project.ID, "Design", nil)
		wireframes := createTask(t, svc, project.ID, "Wireframes", &design.ID)
		mockups := createTask(t, svc, project.ID, "Mockups", &design.ID)

		for _, child := range []*domain.TaskDTO{wireframes, mockups} {
			_, err := svc.Update(ctx, project.ID, child.ID, &domain.UpdateTaskRequest{
				Name:   child.Name,
				Status: domain.TaskStatusCompleted,
			})
			require.NoError(t, err)
		}

		parent, err := svc.GetByID(ctx, project.ID, design.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, parent.Status)
	})

	t.Run("a started child marks the parent in progress", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

		design := createTask(t, svc, project.ID, "Design", nil)
		wireframes := createTask(t, svc, project.ID, "Wireframes", &design.ID)
		createTask(t, svc, project.ID, "Mockups", &design.ID)

		_, err := svc.Update(ctx, project.ID, wireframes.ID, &domain.UpdateTaskRequest{
			Name:   wireframes.Name,
			Status: domain.TaskStatusInProgress,
		})
		require.NoError(t, err)

		parent, err := svc.GetByID(ctx, project.ID, design.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, parent.Status)
	})
}

func TestTaskService_ReplaceAssignments(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns active team members", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		task := createTask(t, svc, project.ID, "Build", nil)
		partner := addTeamMember(t, db, project.ID, domain.CompanyTypePartner, true)

		assignments, err := svc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{
				{CompanyID: partner.ID, Role: "developer", EstimatedHours: 40},
			},
		})
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, partner.ID, assignments[0].CompanyID)
		assert.Equal(t, 40.0, assignments[0].EstimatedHours)
	})

	t.Run("rejects companies outside the team", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		task := createTask(t, svc, project.ID, "Build", nil)
		outsider := createCompany(t, db, "Outsider", domain.CompanyTypeSupplier)

		_, err := svc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{{CompanyID: outsider.ID}},
		})
		assert.ErrorIs(t, err, service.ErrNotTeamMember)
	})

	t.Run("rejects inactive team members", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		task := createTask(t, svc, project.ID, "Build", nil)
		former := addTeamMember(t, db, project.ID, domain.CompanyTypeFreelance, false)

		_, err := svc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{{CompanyID: former.ID}},
		})
		assert.ErrorIs(t, err, service.ErrNotTeamMember)
	})

	t.Run("propagates the set to the subtree", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		parent := createTask(t, svc, project.ID, "Build", nil)
		child := createTask(t, svc, project.ID, "Backend", &parent.ID)
		partner := addTeamMember(t, db, project.ID, domain.CompanyTypePartner, true)

		_, err := svc.ReplaceAssignments(ctx, project.ID, parent.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{{CompanyID: partner.ID, Role: "developer"}},
			Propagate:   true,
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.TaskAssignment{}).Where("task_id = ?", child.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("an empty set clears the assignments", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)
		project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)
		task := createTask(t, svc, project.ID, "Build", nil)
		partner := addTeamMember(t, db, project.ID, domain.CompanyTypePartner, true)

		_, err := svc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{{CompanyID: partner.ID}},
		})
		require.NoError(t, err)

		assignments, err := svc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{})
		require.NoError(t, err)
		assert.Empty(t, assignments)
	})
}

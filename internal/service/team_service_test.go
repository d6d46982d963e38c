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

func newTeamService(db *gorm.DB) *service.TeamService {
	return service.NewTeamService(
		repository.NewTeamMemberRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewProjectRepository(db),
		repository.NewTimesheetRepository(db),
		zap.NewNop(),
	)
}

func TestTeamService_Add(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTeamService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	t.Run("suppliers, partners and freelancers can join", func(t *testing.T) {
		for _, companyType := range []domain.CompanyType{
			domain.CompanyTypeSupplier,
			domain.CompanyTypePartner,
			domain.CompanyTypeFreelance,
		} {
			company := createCompany(t, db, "Member "+string(companyType), companyType)
			dto, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{
				CompanyID:  company.ID,
				Role:       "developer",
				HourlyRate: 60,
			})
			require.NoError(t, err)
			assert.True(t, dto.IsActive)
			assert.Equal(t, company.ID, dto.CompanyID)
		}
	})

	t.Run("clients cannot join", func(t *testing.T) {
		client := createCompany(t, db, "Client Co", domain.CompanyTypeClient)
		_, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: client.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("inactive companies cannot join", func(t *testing.T) {
		dormant := createCompany(t, db, "Dormant", domain.CompanyTypeSupplier)
		require.NoError(t, db.Model(dormant).Update("is_active", false).Error)

		_, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: dormant.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("a company joins at most once", func(t *testing.T) {
		partner := createCompany(t, db, "Repeat", domain.CompanyTypePartner)
		_, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: partner.ID})
		require.NoError(t, err)

		_, err = svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: partner.ID})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestTeamService_Remove(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTeamService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	t.Run("removes an idle member", func(t *testing.T) {
		idle := createCompany(t, db, "Idle", domain.CompanyTypeSupplier)
		member, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: idle.ID})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, project.ID, member.ID))

		members, err := svc.List(ctx, project.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("members with task assignments stay", func(t *testing.T) {
		busy := createCompany(t, db, "Busy", domain.CompanyTypePartner)
		member, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: busy.ID})
		require.NoError(t, err)

		taskSvc := newTaskService(db)
		task, err := taskSvc.Create(ctx, project.ID, &domain.CreateTaskRequest{Name: "Build"})
		require.NoError(t, err)
		_, err = taskSvc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
			Assignments: []domain.AssignmentInput{{CompanyID: busy.ID}},
		})
		require.NoError(t, err)

		err = svc.Remove(ctx, project.ID, member.ID)
		assert.ErrorIs(t, err, service.ErrTeamMemberHasWork)
	})
}

func TestTeamService_ListReportsWorkload(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTeamService(db)
	project := createProject(t, db, "Delivery", domain.ProjectStatusInProgress)

	partner := createCompany(t, db, "Partner", domain.CompanyTypePartner)
	_, err := svc.Add(ctx, project.ID, &domain.AddTeamMemberRequest{CompanyID: partner.ID, HourlyRate: 60})
	require.NoError(t, err)

	taskSvc := newTaskService(db)
	task, err := taskSvc.Create(ctx, project.ID, &domain.CreateTaskRequest{Name: "Build"})
	require.NoError(t, err)
	_, err = taskSvc.ReplaceAssignments(ctx, project.ID, task.ID, &domain.ReplaceAssignmentsRequest{
		Assignments: []domain.AssignmentInput{{CompanyID: partner.ID, EstimatedHours: 20}},
	})
	require.NoError(t, err)

	members, err := svc.List(ctx, project.ID, nil)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, 1, members[0].TasksAssigned)
}

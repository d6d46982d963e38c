package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// teamMemberTypes are the company types that can join a project team
var teamMemberTypes = map[domain.CompanyType]bool{
	domain.CompanyTypeSupplier:  true,
	domain.CompanyTypePartner:   true,
	domain.CompanyTypeFreelance: true,
}

// TeamService manages the external companies working on a project.
type TeamService struct {
	teamRepo      *repository.TeamMemberRepository
	companyRepo   *repository.CompanyRepository
	projectRepo   *repository.ProjectRepository
	timesheetRepo *repository.TimesheetRepository
	logger        *zap.Logger
}

func NewTeamService(
	teamRepo *repository.TeamMemberRepository,
	companyRepo *repository.CompanyRepository,
	projectRepo *repository.ProjectRepository,
	timesheetRepo *repository.TimesheetRepository,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:      teamRepo,
		companyRepo:   companyRepo,
		projectRepo:   projectRepo,
		timesheetRepo: timesheetRepo,
		logger:        logger,
	}
}

func (s *TeamService) Add(ctx context.Context, projectID uuid.UUID, req *domain.AddTeamMemberRequest) (*domain.TeamMemberDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if !teamMemberTypes[company.Type] {
		return nil, fmt.Errorf("%w: %s companies cannot join a project team", ErrInvalidInput, company.Type)
	}
	if !company.IsActive {
		return nil, fmt.Errorf("%w: company is inactive", ErrInvalidInput)
	}

	if existing, err := s.teamRepo.GetByProjectAndCompany(ctx, projectID, req.CompanyID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: company already on the team", ErrConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check team membership: %w", err)
	}

	member := &domain.TeamMember{
		ProjectID:      projectID,
		CompanyID:      req.CompanyID,
		Role:           req.Role,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
		IsActive:       true,
	}

	if err := s.teamRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	s.logger.Info("team member added",
		zap.String("projectID", projectID.String()),
		zap.String("companyID", req.CompanyID.String()))

	member.Company = company
	dto := mapper.ToTeamMemberDTO(member, 0, 0)
	return &dto, nil
}

func (s *TeamService) List(ctx context.Context, projectID uuid.UUID, isActive *bool) ([]domain.TeamMemberDTO, error) {
	members, err := s.teamRepo.ListByProject(ctx, projectID, isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	dtos := make([]domain.TeamMemberDTO, len(members))
	for i := range members {
		member := &members[i]

		tasksAssigned, err := s.teamRepo.CountAssignedTasks(ctx, projectID, member.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
		}
		actualHours, err := s.timesheetRepo.SumApprovedHoursByCompany(ctx, projectID, member.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum member hours: %w", err)
		}

		dtos[i] = mapper.ToTeamMemberDTO(member, int(tasksAssigned), actualHours)
	}

	return dtos, nil
}

func (s *TeamService) Update(ctx context.Context, projectID, memberID uuid.UUID, req *domain.UpdateTeamMemberRequest) (*domain.TeamMemberDTO, error) {
	member, err := s.teamRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	if member.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if req.Role != "" {
		member.Role = req.Role
	}
	if req.HourlyRate != nil {
		member.HourlyRate = *req.HourlyRate
	}
	if req.EstimatedHours != nil {
		member.EstimatedHours = *req.EstimatedHours
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := s.teamRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}

	tasksAssigned, err := s.teamRepo.CountAssignedTasks(ctx, projectID, member.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
	}
	actualHours, err := s.timesheetRepo.SumApprovedHoursByCompany(ctx, projectID, member.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum member hours: %w", err)
	}

	dto := mapper.ToTeamMemberDTO(member, int(tasksAssigned), actualHours)
	return &dto, nil
}

// Remove takes a company off the project team. Companies still holding task
// assignments cannot be removed.
func (s *TeamService) Remove(ctx context.Context, projectID, memberID uuid.UUID) error {
	member, err := s.teamRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get team member: %w", err)
	}
	if member.ProjectID != projectID {
		return ErrNotFound
	}

	assigned, err := s.teamRepo.CountAssignedTasks(ctx, projectID, member.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to count assigned tasks: %w", err)
	}
	if assigned > 0 {
		return fmt.Errorf("%w: %d assignments", ErrTeamMemberHasWork, assigned)
	}

	if err := s.teamRepo.Delete(ctx, memberID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	s.logger.Info("team member removed",
		zap.String("projectID", projectID.String()),
		zap.String("companyID", member.CompanyID.String()))

	return nil
}

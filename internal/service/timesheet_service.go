package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/auth"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// timesheetTransitions defines the approval flow. Approval is one-way;
// rejected entries go back through submission.
var timesheetTransitions = map[domain.TimesheetStatus][]domain.TimesheetStatus{
	domain.TimesheetStatusDraft:     {domain.TimesheetStatusSubmitted},
	domain.TimesheetStatusSubmitted: {domain.TimesheetStatusApproved, domain.TimesheetStatusRejected},
	domain.TimesheetStatusRejected:  {domain.TimesheetStatusSubmitted},
}

type TimesheetService struct {
	timesheetRepo *repository.TimesheetRepository
	taskRepo      *repository.TaskRepository
	projectRepo   *repository.ProjectRepository
	logger        *zap.Logger
}

func NewTimesheetService(
	timesheetRepo *repository.TimesheetRepository,
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		logger:        logger,
	}
}

func (s *TimesheetService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateTimesheetRequest) (*domain.TimesheetDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.TaskID != nil {
		task, err := s.taskRepo.GetByID(ctx, *req.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: task not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		if task.ProjectID != projectID {
			return nil, fmt.Errorf("%w: task belongs to another project", ErrInvalidInput)
		}
	}

	timesheet := &domain.Timesheet{
		ProjectID:    projectID,
		TaskID:       req.TaskID,
		UserID:       req.UserID,
		WorkDate:     req.WorkDate,
		Hours:        req.Hours,
		Description:  req.Description,
		ActivityType: req.ActivityType,
		IsBillable:   true,
		HourlyRate:   req.HourlyRate,
		Status:       domain.TimesheetStatusDraft,
	}
	if req.IsBillable != nil {
		timesheet.IsBillable = *req.IsBillable
	}

	if err := s.timesheetRepo.Create(ctx, timesheet); err != nil {
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	dto := mapper.ToTimesheetDTO(timesheet)
	return &dto, nil
}

func (s *TimesheetService) GetByID(ctx context.Context, projectID, timesheetID uuid.UUID) (*domain.TimesheetDTO, error) {
	timesheet, err := s.timesheetRepo.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	if timesheet.ProjectID != projectID {
		return nil, ErrNotFound
	}

	dto := mapper.ToTimesheetDTO(timesheet)
	return &dto, nil
}

func (s *TimesheetService) List(ctx context.Context, projectID uuid.UUID, page, pageSize int, userID *uuid.UUID, status *domain.TimesheetStatus, from, to *time.Time) ([]domain.TimesheetDTO, int64, error) {
	timesheets, total, err := s.timesheetRepo.ListByProject(ctx, projectID, page, pageSize, userID, status, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}

	dtos := make([]domain.TimesheetDTO, len(timesheets))
	for i := range timesheets {
		dtos[i] = mapper.ToTimesheetDTO(&timesheets[i])
	}

	return dtos, total, nil
}

// Update modifies a timesheet entry. Only draft and rejected entries are editable.
func (s *TimesheetService) Update(ctx context.Context, projectID, timesheetID uuid.UUID, req *domain.UpdateTimesheetRequest) (*domain.TimesheetDTO, error) {
	timesheet, err := s.timesheetRepo.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	if timesheet.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if timesheet.Status != domain.TimesheetStatusDraft && timesheet.Status != domain.TimesheetStatusRejected {
		return nil, fmt.Errorf("%w: timesheet is %s", ErrNotEditable, timesheet.Status)
	}

	if req.TaskID != nil {
		task, err := s.taskRepo.GetByID(ctx, *req.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: task not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		if task.ProjectID != projectID {
			return nil, fmt.Errorf("%w: task belongs to another project", ErrInvalidInput)
		}
	}

	timesheet.TaskID = req.TaskID
	timesheet.WorkDate = req.WorkDate
	timesheet.Hours = req.Hours
	timesheet.Description = req.Description
	timesheet.ActivityType = req.ActivityType

	if req.IsBillable != nil {
		timesheet.IsBillable = *req.IsBillable
	}
	if req.HourlyRate != nil {
		timesheet.HourlyRate = *req.HourlyRate
	}

	if err := s.timesheetRepo.Update(ctx, timesheet); err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}

	dto := mapper.ToTimesheetDTO(timesheet)
	return &dto, nil
}

// UpdateStatus moves a timesheet through the approval flow. Approval and
// rejection require an approver role; an approved entry feeds the actual
// hours of its task and the actual cost of its project.
func (s *TimesheetService) UpdateStatus(ctx context.Context, projectID, timesheetID uuid.UUID, req *domain.UpdateTimesheetStatusRequest) (*domain.TimesheetDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	timesheet, err := s.timesheetRepo.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	if timesheet.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if !transitionAllowed(timesheetTransitions[timesheet.Status], req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, timesheet.Status, req.Status)
	}

	if req.Status == domain.TimesheetStatusApproved || req.Status == domain.TimesheetStatusRejected {
		userCtx, ok := auth.FromContext(ctx)
		if !ok || !userCtx.CanApproveTimesheets() {
			return nil, ErrPermissionDenied
		}
		if req.Status == domain.TimesheetStatusApproved {
			now := time.Now()
			timesheet.ApprovedByID = &userCtx.UserID
			timesheet.ApprovedAt = &now
		}
	}

	timesheet.Status = req.Status

	if err := s.timesheetRepo.Update(ctx, timesheet); err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}

	if req.Status == domain.TimesheetStatusApproved {
		if err := s.refreshActuals(ctx, timesheet); err != nil {
			return nil, err
		}
	}

	s.logger.Info("timesheet status changed",
		zap.String("timesheetID", timesheet.ID.String()),
		zap.String("status", string(timesheet.Status)))

	dto := mapper.ToTimesheetDTO(timesheet)
	return &dto, nil
}

func (s *TimesheetService) Delete(ctx context.Context, projectID, timesheetID uuid.UUID) error {
	timesheet, err := s.timesheetRepo.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get timesheet: %w", err)
	}
	if timesheet.ProjectID != projectID {
		return ErrNotFound
	}

	if timesheet.Status == domain.TimesheetStatusApproved {
		return fmt.Errorf("%w: approved timesheets cannot be deleted", ErrNotEditable)
	}

	if err := s.timesheetRepo.Delete(ctx, timesheetID); err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	return nil
}

// refreshActuals recomputes actual hours on the task and actual cost on the
// project from approved timesheets.
func (s *TimesheetService) refreshActuals(ctx context.Context, timesheet *domain.Timesheet) error {
	if timesheet.TaskID != nil {
		hours, err := s.timesheetRepo.SumApprovedHoursByTask(ctx, *timesheet.TaskID)
		if err != nil {
			return fmt.Errorf("failed to sum task hours: %w", err)
		}
		task, err := s.taskRepo.GetByID(ctx, *timesheet.TaskID)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		task.ActualHours = hours
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task hours: %w", err)
		}
	}

	_, cost, err := s.timesheetRepo.SumApprovedByProject(ctx, timesheet.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to sum project timesheets: %w", err)
	}

	project, err := s.projectRepo.GetByID(ctx, timesheet.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	project.ActualCost = cost
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return fmt.Errorf("failed to update project cost: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// projectTransitions defines the allowed project lifecycle moves
var projectTransitions = map[domain.ProjectStatus][]domain.ProjectStatus{
	domain.ProjectStatusPlanning:   {domain.ProjectStatusInProgress, domain.ProjectStatusCancelled},
	domain.ProjectStatusInProgress: {domain.ProjectStatusOnHold, domain.ProjectStatusCompleted, domain.ProjectStatusCancelled},
	domain.ProjectStatusOnHold:     {domain.ProjectStatusInProgress, domain.ProjectStatusCancelled},
}

type ProjectService struct {
	db            *gorm.DB
	projectRepo   *repository.ProjectRepository
	taskRepo      *repository.TaskRepository
	milestoneRepo *repository.MilestoneRepository
	timesheetRepo *repository.TimesheetRepository
	numberSvc     *NumberSequenceService
	logger        *zap.Logger
}

func NewProjectService(
	db *gorm.DB,
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	milestoneRepo *repository.MilestoneRepository,
	timesheetRepo *repository.TimesheetRepository,
	numberSvc *NumberSequenceService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		db:            db,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		milestoneRepo: milestoneRepo,
		timesheetRepo: timesheetRepo,
		numberSvc:     numberSvc,
		logger:        logger,
	}
}

// Create registers a standalone project, not derived from an order.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	methodology := req.Methodology
	if methodology == "" {
		methodology = domain.MethodologyWaterfall
	}
	if !methodology.IsValid() {
		return nil, fmt.Errorf("%w: unknown methodology %q", ErrInvalidInput, methodology)
	}

	if req.OrderID != nil {
		if existing, err := s.projectRepo.GetByOrderID(ctx, *req.OrderID); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: order already has project %s", ErrConflict, existing.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check order project: %w", err)
		}
	}

	code, err := s.numberSvc.Generate(ctx, PrefixProject)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Code:             code,
		OrderID:          req.OrderID,
		Name:             req.Name,
		Description:      req.Description,
		Methodology:      methodology,
		Status:           domain.ProjectStatusPlanning,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		Budget:           req.Budget,
		ProjectManagerID: req.ProjectManagerID,
		AccountManagerID: req.AccountManagerID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("projectID", project.ID.String()),
		zap.String("code", project.Code))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// CreateFromSkeleton builds a project, its task tree and its milestones from
// an analysis-service skeleton in a single transaction. A failure anywhere
// creates nothing.
func (s *ProjectService) CreateFromSkeleton(ctx context.Context, skeleton *domain.ProjectSkeleton) (*domain.ProjectDTO, error) {
	if skeleton == nil || skeleton.Name == "" {
		return nil, fmt.Errorf("%w: skeleton name is required", ErrInvalidInput)
	}

	code, err := s.numberSvc.Generate(ctx, PrefixProject)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Code:        code,
		Name:        skeleton.Name,
		Description: skeleton.Description,
		Methodology: domain.MethodologyWaterfall,
		Status:      domain.ProjectStatusPlanning,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		if err := s.createSkeletonTasksTx(tx, project.ID, nil, "", skeleton.Tasks); err != nil {
			return err
		}

		for i := range skeleton.Milestones {
			sm := &skeleton.Milestones[i]
			if sm.Name == "" {
				return fmt.Errorf("%w: milestone name is required", ErrInvalidInput)
			}
			mtype := sm.Type
			if mtype == "" {
				mtype = domain.MilestoneTypeDeliverable
			}
			if !mtype.IsValid() {
				return fmt.Errorf("%w: unknown milestone type %q", ErrInvalidInput, sm.Type)
			}
			milestone := &domain.Milestone{
				ProjectID: project.ID,
				Name:      sm.Name,
				Type:      mtype,
				Status:    domain.MilestoneStatusPending,
				DueDate:   sm.DueDate,
				SortOrder: i,
			}
			if err := tx.Create(milestone).Error; err != nil {
				return fmt.Errorf("failed to create milestone: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project bootstrapped from skeleton",
		zap.String("projectID", project.ID.String()),
		zap.String("code", project.Code),
		zap.Int("tasks", len(skeleton.Tasks)),
		zap.Int("milestones", len(skeleton.Milestones)))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) createSkeletonTasksTx(tx *gorm.DB, projectID uuid.UUID, parentID *uuid.UUID, prefix string, tasks []domain.SkeletonTask) error {
	for i := range tasks {
		st := &tasks[i]
		if st.Name == "" {
			return fmt.Errorf("%w: task name is required", ErrInvalidInput)
		}

		code := fmt.Sprintf("%d", i+1)
		if prefix != "" {
			code = fmt.Sprintf("%s.%d", prefix, i+1)
		}

		task := &domain.Task{
			ProjectID:      projectID,
			ParentTaskID:   parentID,
			WBSCode:        code,
			Name:           st.Name,
			Description:    st.Description,
			Status:         domain.TaskStatusTodo,
			Priority:       domain.TaskPriorityMedium,
			EstimatedHours: st.EstimatedHours,
			SortOrder:      i,
		}
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		if err := s.createSkeletonTasksTx(tx, projectID, &task.ID, code, st.Children); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) List(ctx context.Context, page, pageSize int, status *domain.ProjectStatus, managerID *uuid.UUID) ([]domain.ProjectDTO, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize, status, managerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}

	return dtos, total, nil
}

func (s *ProjectService) Search(ctx context.Context, query string, limit int) ([]domain.ProjectDTO, error) {
	projects, err := s.projectRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}

	return dtos, nil
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.Status != "" && req.Status != project.Status {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		}
		if !transitionAllowed(projectTransitions[project.Status], req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, project.Status, req.Status)
		}
		project.Status = req.Status
		now := time.Now()
		if req.Status == domain.ProjectStatusInProgress && project.ActualStartDate == nil {
			project.ActualStartDate = &now
		}
		if req.Status == domain.ProjectStatusCompleted && project.ActualEndDate == nil {
			project.ActualEndDate = &now
		}
	}

	if req.Methodology != "" {
		if !req.Methodology.IsValid() {
			return nil, fmt.Errorf("%w: unknown methodology %q", ErrInvalidInput, req.Methodology)
		}
		project.Methodology = req.Methodology
	}

	project.Name = req.Name
	project.Description = req.Description
	project.PlannedStartDate = req.PlannedStartDate
	project.PlannedEndDate = req.PlannedEndDate
	if req.ActualStartDate != nil {
		project.ActualStartDate = req.ActualStartDate
	}
	if req.ActualEndDate != nil {
		project.ActualEndDate = req.ActualEndDate
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	project.ProjectManagerID = req.ProjectManagerID
	project.AccountManagerID = req.AccountManagerID

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	if project.Status != domain.ProjectStatusPlanning && project.Status != domain.ProjectStatusCancelled {
		return fmt.Errorf("%w: only planning or cancelled projects can be deleted", ErrNotEditable)
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", zap.String("projectID", id.String()))
	return nil
}

// Rollup aggregates tasks, milestones and approved timesheets into the
// project's progress, hours and cost figures, and persists them.
func (s *ProjectService) Rollup(ctx context.Context, id uuid.UUID) (*domain.ProjectRollupDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	milestones, err := s.milestoneRepo.ListByProject(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	hours, cost, err := s.timesheetRepo.SumApprovedByProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum timesheets: %w", err)
	}

	rollup := &domain.ProjectRollupDTO{
		ProjectID:   id,
		ActualHours: hours,
		ActualCost:  cost,
	}

	// Cancelled tasks are excluded from progress entirely
	for i := range tasks {
		task := &tasks[i]
		if task.Status == domain.TaskStatusCancelled {
			continue
		}
		rollup.TotalTasks++
		rollup.EstimatedHours += task.EstimatedHours
		if task.Status == domain.TaskStatusCompleted {
			rollup.CompletedTasks++
		}
	}

	for i := range milestones {
		if milestones[i].Status == domain.MilestoneStatusCancelled {
			continue
		}
		rollup.TotalMilestones++
		if milestones[i].Status == domain.MilestoneStatusCompleted {
			rollup.CompletedMilestones++
		}
	}

	if rollup.TotalTasks > 0 {
		rollup.ProgressPercentage = float64(rollup.CompletedTasks) / float64(rollup.TotalTasks) * 100
	}

	project.ProgressPercentage = rollup.ProgressPercentage
	project.ActualCost = rollup.ActualCost
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to persist rollup: %w", err)
	}

	return rollup, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService manages a project's work breakdown structure. WBS codes are
// derived from position: root tasks are "1", "2", ..., children append a
// dot-separated index ("1.1", "1.2.3"). Structural changes renumber the
// whole tree so codes always match positions.
type TaskService struct {
	db          *gorm.DB
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	teamRepo    *repository.TeamMemberRepository
	logger      *zap.Logger
}

func NewTaskService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	teamRepo *repository.TeamMemberRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		db:          db,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		logger:      logger,
	}
}

// Create appends a task at the end of its sibling list.
func (s *TaskService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	var parentCode string
	if req.ParentTaskID != nil {
		parent, err := s.taskRepo.GetByID(ctx, *req.ParentTaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent task not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to get parent task: %w", err)
		}
		if parent.ProjectID != projectID {
			return nil, fmt.Errorf("%w: parent task belongs to another project", ErrInvalidInput)
		}
		parentCode = parent.WBSCode
	}

	siblings, err := s.taskRepo.ListChildren(ctx, projectID, req.ParentTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sibling tasks: %w", err)
	}

	task := &domain.Task{
		ProjectID:        projectID,
		ParentTaskID:     req.ParentTaskID,
		WBSCode:          childCode(parentCode, len(siblings)+1),
		Name:             req.Name,
		Description:      req.Description,
		Status:           domain.TaskStatusTodo,
		Priority:         priority,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		EstimatedHours:   req.EstimatedHours,
		IsMilestone:      req.IsMilestone,
		SortOrder:        len(siblings),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		zap.String("taskID", task.ID.String()),
		zap.String("projectID", projectID.String()),
		zap.String("wbsCode", task.WBSCode))

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

func (s *TaskService) GetByID(ctx context.Context, projectID, taskID uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task.ProjectID != projectID {
		return nil, ErrNotFound
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// Tree returns the project's tasks as a nested structure
func (s *TaskService) Tree(ctx context.Context, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return mapper.ToTaskTree(tasks), nil
}

// Update modifies task fields. A status change optionally propagates to the
// whole subtree and always triggers ancestor status recomputation.
func (s *TaskService) Update(ctx context.Context, projectID, taskID uuid.UUID, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task.ProjectID != projectID {
		return nil, ErrNotFound
	}

	statusChanged := req.Status != "" && req.Status != task.Status
	if statusChanged && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	if req.Priority != "" {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, req.Priority)
		}
		task.Priority = req.Priority
	}

	task.Name = req.Name
	task.Description = req.Description
	task.PlannedStartDate = req.PlannedStartDate
	task.PlannedEndDate = req.PlannedEndDate

	if req.EstimatedHours != nil {
		task.EstimatedHours = *req.EstimatedHours
	}
	if req.ProgressPercentage != nil {
		task.ProgressPercentage = *req.ProgressPercentage
	}
	if req.IsMilestone != nil {
		task.IsMilestone = *req.IsMilestone
	}

	if statusChanged {
		task.Status = req.Status
		if req.Status == domain.TaskStatusCompleted {
			task.ProgressPercentage = 100
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks, err := s.taskRepo.ListByProjectTx(tx, projectID)
		if err != nil {
			return fmt.Errorf("failed to load task tree: %w", err)
		}
		byID, children := indexTasks(tasks)

		// Apply the edits to the in-memory copy too
		if node, ok := byID[task.ID]; ok {
			node.Status = task.Status
		}

		if err := s.taskRepo.SaveTx(tx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if statusChanged && req.PropagateStatus {
			for _, desc := range descendantsOf(task.ID, children) {
				desc.Status = task.Status
				if task.Status == domain.TaskStatusCompleted {
					desc.ProgressPercentage = 100
				}
				if err := s.taskRepo.SaveTx(tx, desc); err != nil {
					return fmt.Errorf("failed to propagate status: %w", err)
				}
			}
		}

		if statusChanged {
			if err := s.recomputeAncestorsTx(tx, task, byID, children); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// Move reparents or repositions a task. The tree is renumbered afterwards so
// every WBS code reflects the new positions. Moving a task under itself or
// one of its descendants fails before anything is written.
func (s *TaskService) Move(ctx context.Context, projectID, taskID uuid.UUID, req *domain.MoveTaskRequest) ([]domain.TaskDTO, error) {
	if req.NewParentTaskID != nil && *req.NewParentTaskID == taskID {
		return nil, fmt.Errorf("%w: task cannot be its own parent", ErrTaskCycle)
	}

	var result []domain.TaskDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks, err := s.taskRepo.ListByProjectTx(tx, projectID)
		if err != nil {
			return fmt.Errorf("failed to load task tree: %w", err)
		}
		byID, children := indexTasks(tasks)

		task, ok := byID[taskID]
		if !ok {
			return ErrNotFound
		}

		if req.NewParentTaskID != nil {
			newParent, ok := byID[*req.NewParentTaskID]
			if !ok {
				return fmt.Errorf("%w: new parent task not found", ErrInvalidInput)
			}
			// Walk up from the new parent; hitting the moved task means a cycle
			for cursor := newParent; cursor != nil; {
				if cursor.ID == taskID {
					return fmt.Errorf("%w: %s is a descendant of %s", ErrTaskCycle, newParent.WBSCode, task.WBSCode)
				}
				if cursor.ParentTaskID == nil {
					break
				}
				cursor = byID[*cursor.ParentTaskID]
			}
		}

		// Detach from old siblings, attach to new
		task.ParentTaskID = req.NewParentTaskID

		newParentKey := uuid.Nil
		if req.NewParentTaskID != nil {
			newParentKey = *req.NewParentTaskID
		}
		siblings := make([]*domain.Task, 0)
		for _, node := range children[newParentKey] {
			if node.ID != taskID {
				siblings = append(siblings, node)
			}
		}
		position := len(siblings)
		if req.Position != nil && *req.Position < position {
			position = *req.Position
		}
		siblings = append(siblings[:position], append([]*domain.Task{task}, siblings[position:]...)...)
		for i, node := range siblings {
			node.SortOrder = i
		}

		_, children = reindexChildren(tasks)
		renumbered := renumberTree(children)
		for _, node := range renumbered {
			if err := s.taskRepo.SaveTx(tx, node); err != nil {
				return fmt.Errorf("failed to renumber task: %w", err)
			}
		}

		result = mapper.ToTaskTree(cloneTasks(tasks, children))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task moved",
		zap.String("taskID", taskID.String()),
		zap.String("projectID", projectID.String()))

	return result, nil
}

// Delete removes a task and its whole subtree, then renumbers the tree.
func (s *TaskService) Delete(ctx context.Context, projectID, taskID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks, err := s.taskRepo.ListByProjectTx(tx, projectID)
		if err != nil {
			return fmt.Errorf("failed to load task tree: %w", err)
		}
		byID, children := indexTasks(tasks)

		task, ok := byID[taskID]
		if !ok {
			return ErrNotFound
		}

		doomed := []uuid.UUID{taskID}
		for _, desc := range descendantsOf(taskID, children) {
			doomed = append(doomed, desc.ID)
		}

		if err := s.taskRepo.DeleteTx(tx, doomed); err != nil {
			return fmt.Errorf("failed to delete task subtree: %w", err)
		}

		// Renumber the survivors
		remaining := make([]domain.Task, 0, len(tasks))
		doomedSet := make(map[uuid.UUID]bool, len(doomed))
		for _, id := range doomed {
			doomedSet[id] = true
		}
		for i := range tasks {
			if !doomedSet[tasks[i].ID] {
				remaining = append(remaining, tasks[i])
			}
		}

		_, children = reindexChildren(remaining)
		for _, node := range renumberTree(children) {
			if err := s.taskRepo.SaveTx(tx, node); err != nil {
				return fmt.Errorf("failed to renumber task: %w", err)
			}
		}

		s.logger.Info("task deleted",
			zap.String("taskID", task.ID.String()),
			zap.Int("subtreeSize", len(doomed)))
		return nil
	})
	return err
}

// ReplaceAssignments swaps the full assignment set of a task. Every assigned
// company must be an active member of the project team. With propagate set,
// the same assignment set is applied to the whole subtree.
func (s *TaskService) ReplaceAssignments(ctx context.Context, projectID, taskID uuid.UUID, req *domain.ReplaceAssignmentsRequest) ([]domain.TaskAssignmentDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task.ProjectID != projectID {
		return nil, ErrNotFound
	}

	for _, input := range req.Assignments {
		member, err := s.teamRepo.GetByProjectAndCompany(ctx, projectID, input.CompanyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: company %s", ErrNotTeamMember, input.CompanyID)
			}
			return nil, fmt.Errorf("failed to check team membership: %w", err)
		}
		if !member.IsActive {
			return nil, fmt.Errorf("%w: company %s is inactive on this project", ErrNotTeamMember, input.CompanyID)
		}
	}

	buildSet := func() []domain.TaskAssignment {
		assignments := make([]domain.TaskAssignment, len(req.Assignments))
		for i, input := range req.Assignments {
			assignments[i] = domain.TaskAssignment{
				CompanyID:      input.CompanyID,
				Role:           input.Role,
				EstimatedHours: input.EstimatedHours,
			}
		}
		return assignments
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.ReplaceAssignmentsTx(tx, taskID, buildSet()); err != nil {
			return fmt.Errorf("failed to replace assignments: %w", err)
		}

		if req.Propagate {
			tasks, err := s.taskRepo.ListByProjectTx(tx, projectID)
			if err != nil {
				return fmt.Errorf("failed to load task tree: %w", err)
			}
			_, children := indexTasks(tasks)
			for _, desc := range descendantsOf(taskID, children) {
				if err := s.taskRepo.ReplaceAssignmentsTx(tx, desc.ID, buildSet()); err != nil {
					return fmt.Errorf("failed to propagate assignments: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	assignments, err := s.taskRepo.ListAssignments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	dtos := make([]domain.TaskAssignmentDTO, len(assignments))
	for i := range assignments {
		dtos[i] = mapper.ToTaskAssignmentDTO(&assignments[i])
	}

	return dtos, nil
}

// recomputeAncestorsTx walks up from a task, deriving each ancestor's status
// from its children: all completed means completed, any started means
// in_progress, otherwise todo. Cancelled children are ignored.
func (s *TaskService) recomputeAncestorsTx(tx *gorm.DB, task *domain.Task, byID map[uuid.UUID]*domain.Task, children map[uuid.UUID][]*domain.Task) error {
	cursor := task
	for cursor.ParentTaskID != nil {
		parent, ok := byID[*cursor.ParentTaskID]
		if !ok {
			break
		}

		derived := deriveStatus(children[parent.ID])
		if derived != "" && derived != parent.Status &&
			parent.Status != domain.TaskStatusCancelled {
			parent.Status = derived
			if derived == domain.TaskStatusCompleted {
				parent.ProgressPercentage = 100
			}
			if err := s.taskRepo.SaveTx(tx, parent); err != nil {
				return fmt.Errorf("failed to recompute ancestor status: %w", err)
			}
		}

		cursor = parent
	}
	return nil
}

func deriveStatus(children []*domain.Task) domain.TaskStatus {
	var total, completed, started int
	for _, child := range children {
		switch child.Status {
		case domain.TaskStatusCancelled:
			continue
		case domain.TaskStatusCompleted:
			completed++
			started++
		case domain.TaskStatusInProgress, domain.TaskStatusReview:
			started++
		}
		total++
	}
	if total == 0 {
		return ""
	}
	if completed == total {
		return domain.TaskStatusCompleted
	}
	if started > 0 {
		return domain.TaskStatusInProgress
	}
	return domain.TaskStatusTodo
}

// childCode builds a WBS code from the parent's code and a 1-based index
func childCode(parentCode string, index int) string {
	if parentCode == "" {
		return strconv.Itoa(index)
	}
	return parentCode + "." + strconv.Itoa(index)
}

// indexTasks builds id and children lookup maps over a task slice
func indexTasks(tasks []domain.Task) (map[uuid.UUID]*domain.Task, map[uuid.UUID][]*domain.Task) {
	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	children := make(map[uuid.UUID][]*domain.Task)
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	for i := range tasks {
		if tasks[i].ParentTaskID != nil {
			children[*tasks[i].ParentTaskID] = append(children[*tasks[i].ParentTaskID], &tasks[i])
		} else {
			children[uuid.Nil] = append(children[uuid.Nil], &tasks[i])
		}
	}
	for id := range children {
		siblings := children[id]
		sort.SliceStable(siblings, func(a, b int) bool {
			return siblings[a].SortOrder < siblings[b].SortOrder
		})
	}
	return byID, children
}

// reindexChildren rebuilds the children map after structural edits
func reindexChildren(tasks []domain.Task) (map[uuid.UUID]*domain.Task, map[uuid.UUID][]*domain.Task) {
	return indexTasks(tasks)
}

// renumberTree assigns positional sort orders and WBS codes to the whole
// tree, returning the nodes whose code or position changed.
func renumberTree(children map[uuid.UUID][]*domain.Task) []*domain.Task {
	var changed []*domain.Task

	var walk func(parentID uuid.UUID, parentCode string)
	walk = func(parentID uuid.UUID, parentCode string) {
		for i, node := range children[parentID] {
			code := childCode(parentCode, i+1)
			if node.WBSCode != code || node.SortOrder != i {
				node.WBSCode = code
				node.SortOrder = i
				changed = append(changed, node)
			}
			walk(node.ID, code)
		}
	}
	walk(uuid.Nil, "")

	return changed
}

// cloneTasks flattens the tree back into a value slice ordered for mapping
func cloneTasks(tasks []domain.Task, children map[uuid.UUID][]*domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))

	var walk func(parentID uuid.UUID)
	walk = func(parentID uuid.UUID) {
		for _, node := range children[parentID] {
			out = append(out, *node)
			walk(node.ID)
		}
	}
	walk(uuid.Nil)

	return out
}

// descendantsOf returns every task below the given one, depth first
func descendantsOf(taskID uuid.UUID, children map[uuid.UUID][]*domain.Task) []*domain.Task {
	var out []*domain.Task
	var walk func(id uuid.UUID)
	walk = func(id uuid.UUID) {
		for _, child := range children[id] {
			out = append(out, child)
			walk(child.ID)
		}
	}
	walk(taskID)
	return out
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Preload("Assignments.Company").
		Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Assignments").Delete(&domain.Task{BaseModel: domain.BaseModel{ID: id}}).Error
}

// ListByProject returns all tasks of a project ordered for WBS traversal
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Preload("Assignments.Company").
		Where("project_id = ?", projectID).
		Order("sort_order ASC").Find(&tasks).Error
	return tasks, err
}

// ListChildren returns the direct children of a parent, or the root tasks when parentID is nil
func (r *TaskRepository) ListChildren(ctx context.Context, projectID uuid.UUID, parentID *uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if parentID == nil {
		query = query.Where("parent_task_id IS NULL")
	} else {
		query = query.Where("parent_task_id = ?", *parentID)
	}
	err := query.Order("sort_order ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) CountChildren(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("parent_task_id = ?", taskID).Count(&count).Error
	return count, err
}

// ListByProjectTx loads the full task set of a project inside a transaction,
// locking the rows on postgres so concurrent tree mutations serialize.
func (r *TaskRepository) ListByProjectTx(tx *gorm.DB, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := lockClause(tx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) SaveTx(tx *gorm.DB, task *domain.Task) error {
	return tx.Save(task).Error
}

func (r *TaskRepository) DeleteTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", ids).Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	// timesheets survive their task; they stay attached to the project
	if err := tx.Model(&domain.Timesheet{}).Where("task_id IN ?", ids).
		Update("task_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Task{}).Error
}

// Assignments

func (r *TaskRepository) ListAssignments(ctx context.Context, taskID uuid.UUID) ([]domain.TaskAssignment, error) {
	var assignments []domain.TaskAssignment
	err := r.db.WithContext(ctx).Preload("Company").
		Where("task_id = ?", taskID).Find(&assignments).Error
	return assignments, err
}

// ReplaceAssignmentsTx swaps the full assignment set of a task
func (r *TaskRepository) ReplaceAssignmentsTx(tx *gorm.DB, taskID uuid.UUID, assignments []domain.TaskAssignment) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	for i := range assignments {
		assignments[i].TaskID = taskID
	}
	return tx.Create(&assignments).Error
}

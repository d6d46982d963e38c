package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Create(ctx context.Context, timesheet *domain.Timesheet) error {
	return r.db.WithContext(ctx).Create(timesheet).Error
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Timesheet, error) {
	var timesheet domain.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("User").
		Where("id = ?", id).First(&timesheet).Error
	if err != nil {
		return nil, err
	}
	return &timesheet, nil
}

func (r *TimesheetRepository) Update(ctx context.Context, timesheet *domain.Timesheet) error {
	return r.db.WithContext(ctx).Save(timesheet).Error
}

func (r *TimesheetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Timesheet{}, "id = ?", id).Error
}

func (r *TimesheetRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, pageSize int, userID *uuid.UUID, status *domain.TimesheetStatus, from, to *time.Time) ([]domain.Timesheet, int64, error) {
	var timesheets []domain.Timesheet
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Timesheet{}).
		Preload("Task").Preload("User").
		Where("project_id = ?", projectID)

	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if from != nil {
		query = query.Where("work_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("work_date <= ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("work_date DESC").Find(&timesheets).Error

	return timesheets, total, err
}

// SumApprovedHoursByTask returns total approved hours logged against a task
func (r *TimesheetRepository) SumApprovedHoursByTask(ctx context.Context, taskID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Timesheet{}).
		Where("task_id = ? AND status = ?", taskID, domain.TimesheetStatusApproved).
		Select("COALESCE(SUM(hours), 0)").Scan(&total).Error
	return total, err
}

// SumApprovedByProject returns total approved hours and cost for a project
func (r *TimesheetRepository) SumApprovedByProject(ctx context.Context, projectID uuid.UUID) (hours float64, cost float64, err error) {
	row := struct {
		Hours float64
		Cost  float64
	}{}
	err = r.db.WithContext(ctx).Model(&domain.Timesheet{}).
		Where("project_id = ? AND status = ?", projectID, domain.TimesheetStatusApproved).
		Select("COALESCE(SUM(hours), 0) AS hours, COALESCE(SUM(hours * hourly_rate), 0) AS cost").
		Scan(&row).Error
	return row.Hours, row.Cost, err
}

// SumApprovedHoursByCompany returns total approved hours a team company logged on a project
func (r *TimesheetRepository) SumApprovedHoursByCompany(ctx context.Context, projectID, companyID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Timesheet{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = timesheets.task_id").
		Where("timesheets.project_id = ? AND timesheets.status = ? AND task_assignments.company_id = ?",
			projectID, domain.TimesheetStatusApproved, companyID).
		Select("COALESCE(SUM(timesheets.hours), 0)").Scan(&total).Error
	return total, err
}

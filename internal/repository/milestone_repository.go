package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Create(ctx context.Context, milestone *domain.Milestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Milestone, error) {
	var milestone domain.Milestone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&milestone).Error
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *MilestoneRepository) Update(ctx context.Context, milestone *domain.Milestone) error {
	return r.db.WithContext(ctx).Save(milestone).Error
}

func (r *MilestoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Milestone{}, "id = ?", id).Error
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID uuid.UUID, status *domain.MilestoneStatus) ([]domain.Milestone, error) {
	var milestones []domain.Milestone
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("sort_order ASC, due_date ASC").Find(&milestones).Error
	return milestones, err
}

// ListOverdue returns non-terminal milestones whose due date has passed
func (r *MilestoneRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Milestone, error) {
	var milestones []domain.Milestone
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status IN ?", []domain.MilestoneStatus{domain.MilestoneStatusPending, domain.MilestoneStatusInProgress}).
		Find(&milestones).Error
	return milestones, err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TeamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

func (r *TeamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *TeamMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := r.db.WithContext(ctx).Preload("Company").Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByProjectAndCompany finds an existing membership row for dedup checks
func (r *TeamMemberRepository) GetByProjectAndCompany(ctx context.Context, projectID, companyID uuid.UUID) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND company_id = ?", projectID, companyID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *TeamMemberRepository) Update(ctx context.Context, member *domain.TeamMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *TeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TeamMember{}, "id = ?", id).Error
}

func (r *TeamMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID, isActive *bool) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	query := r.db.WithContext(ctx).Preload("Company").Where("project_id = ?", projectID)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	err := query.Order("created_at ASC").Find(&members).Error
	return members, err
}

// CountAssignedTasks counts task assignments a team company holds within a project
func (r *TeamMemberRepository) CountAssignedTasks(ctx context.Context, projectID, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TaskAssignment{}).
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("tasks.project_id = ? AND task_assignments.company_id = ?", projectID, companyID).
		Count(&count).Error
	return count, err
}

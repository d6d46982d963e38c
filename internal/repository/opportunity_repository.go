package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Create(opp).Error
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Items.Service").
		Where("id = ?", id).First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityRepository) Update(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

func (r *OpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.Opportunity{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *OpportunityRepository) List(ctx context.Context, page, pageSize int, companyID *uuid.UUID, status *domain.OpportunityStatus, ownerID *uuid.UUID) ([]domain.Opportunity, int64, error) {
	var opps []domain.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Opportunity{}).Preload("Company")

	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&opps).Error

	return opps, total, err
}

func (r *OpportunityRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).Preload("Company").
		Where("LOWER(code) LIKE ? OR LOWER(title) LIKE ?", searchPattern, searchPattern).
		Limit(limit).Find(&opps).Error
	return opps, err
}

// Line items

func (r *OpportunityRepository) AddItem(ctx context.Context, item *domain.OpportunityService) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *OpportunityRepository) GetItem(ctx context.Context, id uuid.UUID) (*domain.OpportunityService, error) {
	var item domain.OpportunityService
	err := r.db.WithContext(ctx).Preload("Service").Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OpportunityRepository) UpdateItem(ctx context.Context, item *domain.OpportunityService) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *OpportunityRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.OpportunityService{}, "id = ?", id).Error
}

func (r *OpportunityRepository) ListItems(ctx context.Context, opportunityID uuid.UUID) ([]domain.OpportunityService, error) {
	var items []domain.OpportunityService
	err := r.db.WithContext(ctx).Preload("Service").
		Where("opportunity_id = ?", opportunityID).
		Order("sort_order ASC").Find(&items).Error
	return items, err
}

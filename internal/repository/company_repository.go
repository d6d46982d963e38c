package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Preload("Contacts").Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

// Deactivate soft-disables a company instead of deleting it
func (r *CompanyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Company{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *CompanyRepository) List(ctx context.Context, page, pageSize int, companyType *domain.CompanyType, isActive *bool) ([]domain.Company, int64, error) {
	var companies []domain.Company
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Company{})

	if companyType != nil {
		query = query.Where("type = ?", *companyType)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&companies).Error

	return companies, total, err
}

func (r *CompanyRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Company, error) {
	var companies []domain.Company
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(vat_number) LIKE ?", searchPattern, searchPattern).
		Limit(limit).Find(&companies).Error
	return companies, err
}

// ListByTypes returns active companies whose type is in the given set
func (r *CompanyRepository) ListByTypes(ctx context.Context, types []domain.CompanyType) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.db.WithContext(ctx).
		Where("type IN ? AND is_active = ?", types, true).
		Order("name ASC").Find(&companies).Error
	return companies, err
}

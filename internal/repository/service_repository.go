package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Components.ChildService").
		Where("id = ?", id).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) GetByCode(ctx context.Context, code string) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Components").Delete(&domain.Service{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *ServiceRepository) List(ctx context.Context, page, pageSize int, serviceType *domain.ServiceType, category *string, isActive *bool) ([]domain.Service, int64, error) {
	var services []domain.Service
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Service{})

	if serviceType != nil {
		query = query.Where("type = ?", *serviceType)
	}
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("code ASC").Find(&services).Error

	return services, total, err
}

func (r *ServiceRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Service, error) {
	var services []domain.Service
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", searchPattern, searchPattern).
		Limit(limit).Find(&services).Error
	return services, err
}

// CountLineItemReferences counts opportunity and order line items referencing a service.
// Used to restrict deletion of services that are in use.
func (r *ServiceRepository) CountLineItemReferences(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	var oppCount, orderCount int64

	if err := r.db.WithContext(ctx).Model(&domain.OpportunityService{}).
		Where("service_id = ?", serviceID).Count(&oppCount).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.OrderService{}).
		Where("service_id = ?", serviceID).Count(&orderCount).Error; err != nil {
		return 0, err
	}

	return oppCount + orderCount, nil
}

// CountKitReferences counts kit composition rows using a service as a component
func (r *ServiceRepository) CountKitReferences(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ServiceComposition{}).
		Where("child_service_id = ?", serviceID).Count(&count).Error
	return count, err
}

// Composition rows

func (r *ServiceRepository) AddComposition(ctx context.Context, comp *domain.ServiceComposition) error {
	return r.db.WithContext(ctx).Create(comp).Error
}

func (r *ServiceRepository) GetComposition(ctx context.Context, id uuid.UUID) (*domain.ServiceComposition, error) {
	var comp domain.ServiceComposition
	err := r.db.WithContext(ctx).Preload("ChildService").Where("id = ?", id).First(&comp).Error
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *ServiceRepository) UpdateComposition(ctx context.Context, comp *domain.ServiceComposition) error {
	return r.db.WithContext(ctx).Save(comp).Error
}

func (r *ServiceRepository) DeleteComposition(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ServiceComposition{}, "id = ?", id).Error
}

func (r *ServiceRepository) ListComponents(ctx context.Context, parentServiceID uuid.UUID) ([]domain.ServiceComposition, error) {
	var comps []domain.ServiceComposition
	err := r.db.WithContext(ctx).Preload("ChildService").
		Where("parent_service_id = ?", parentServiceID).
		Order("sort_order ASC").Find(&comps).Error
	return comps, err
}

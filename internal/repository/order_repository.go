package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Items.Service").
		Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByOpportunityID returns the order derived from an opportunity, if any
func (r *OrderRepository) GetByOpportunityID(ctx context.Context, opportunityID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Where("opportunity_id = ?", opportunityID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.Order{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, companyID *uuid.UUID, status *domain.OrderStatus) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{}).Preload("Company")

	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error

	return orders, total, err
}

func (r *OrderRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).Preload("Company").
		Where("LOWER(order_number) LIKE ? OR LOWER(title) LIKE ?", searchPattern, searchPattern).
		Limit(limit).Find(&orders).Error
	return orders, err
}

// Line items

func (r *OrderRepository) AddItem(ctx context.Context, item *domain.OrderService) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *OrderRepository) GetItem(ctx context.Context, id uuid.UUID) (*domain.OrderService, error) {
	var item domain.OrderService
	err := r.db.WithContext(ctx).Preload("Service").Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item *domain.OrderService) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *OrderRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.OrderService{}, "id = ?", id).Error
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderService, error) {
	var items []domain.OrderService
	err := r.db.WithContext(ctx).Preload("Service").
		Where("order_id = ?", orderID).
		Order("sort_order ASC").Find(&items).Error
	return items, err
}

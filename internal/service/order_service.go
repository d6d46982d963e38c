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

// orderTransitions defines the allowed lifecycle moves. Work can be paused
// and resumed between in_progress and on_hold.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusDraft:      {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:  {domain.OrderStatusInProgress, domain.OrderStatusCancelled},
	domain.OrderStatusInProgress: {domain.OrderStatusOnHold, domain.OrderStatusCompleted, domain.OrderStatusCancelled},
	domain.OrderStatusOnHold:     {domain.OrderStatusInProgress, domain.OrderStatusCancelled},
}

// OrderService manages confirmed work. The first transition to in_progress
// derives a delivery project from the order.
type OrderService struct {
	db          *gorm.DB
	orderRepo   *repository.OrderRepository
	projectRepo *repository.ProjectRepository
	companyRepo *repository.CompanyRepository
	serviceRepo *repository.ServiceRepository
	numberSvc   *NumberSequenceService
	logger      *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	projectRepo *repository.ProjectRepository,
	companyRepo *repository.CompanyRepository,
	serviceRepo *repository.ServiceRepository,
	numberSvc *NumberSequenceService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		projectRepo: projectRepo,
		companyRepo: companyRepo,
		serviceRepo: serviceRepo,
		numberSvc:   numberSvc,
		logger:      logger,
	}
}

// Create registers a manual order, not derived from an opportunity.
func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.OrderDTO, error) {
	if _, err := s.companyRepo.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.OrderPriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	orderNumber, err := s.numberSvc.Generate(ctx, PrefixOrder)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNumber:      orderNumber,
		CompanyID:        req.CompanyID,
		ContactID:        req.ContactID,
		Title:            req.Title,
		Description:      req.Description,
		Status:           domain.OrderStatusDraft,
		Priority:         priority,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		EstimatedHours:   req.EstimatedHours,
		AccountManagerID: req.AccountManagerID,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("orderID", order.ID.String()),
		zap.String("orderNumber", order.OrderNumber))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, companyID *uuid.UUID, status *domain.OrderStatus) ([]domain.OrderDTO, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, companyID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}

	return dtos, total, nil
}

func (s *OrderService) Search(ctx context.Context, query string, limit int) ([]domain.OrderDTO, error) {
	orders, err := s.orderRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}

	return dtos, nil
}

func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrNotEditable, order.Status)
	}

	if req.Priority != "" {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, req.Priority)
		}
		order.Priority = req.Priority
	}

	order.ContactID = req.ContactID
	order.Title = req.Title
	order.Description = req.Description
	order.StartDate = req.StartDate
	order.EndDate = req.EndDate
	order.AccountManagerID = req.AccountManagerID

	if req.InvoicedAmount != nil {
		order.InvoicedAmount = *req.InvoicedAmount
	}
	if req.EstimatedHours != nil {
		order.EstimatedHours = *req.EstimatedHours
	}
	if req.ProgressPercentage != nil {
		order.ProgressPercentage = *req.ProgressPercentage
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// UpdateStatus moves an order through its lifecycle. The first transition to
// in_progress derives the delivery project in the same transaction; resuming
// from on_hold finds the existing project and derives nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderStatusRequest) (*domain.OrderDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !transitionAllowed(orderTransitions[order.Status], req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, req.Status)
	}

	order.Status = req.Status
	if req.Status == domain.OrderStatusInProgress && order.StartDate == nil {
		now := time.Now()
		order.StartDate = &now
	}
	if req.Status == domain.OrderStatusCompleted {
		order.ProgressPercentage = 100
		if order.EndDate == nil {
			now := time.Now()
			order.EndDate = &now
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if req.Status == domain.OrderStatusInProgress {
			if err := s.deriveProjectTx(tx, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("orderID", order.ID.String()),
		zap.String("status", string(order.Status)))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// deriveProjectTx creates the delivery project for an order going in
// progress. Skips creation if a project already exists for the order.
func (s *OrderService) deriveProjectTx(tx *gorm.DB, order *domain.Order) error {
	var existing domain.Project
	err := tx.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing project: %w", err)
	}

	code, err := s.numberSvc.GenerateTx(tx, PrefixProject)
	if err != nil {
		return err
	}

	orderID := order.ID
	project := &domain.Project{
		Code:             code,
		OrderID:          &orderID,
		Name:             order.Title,
		Description:      order.Description,
		Methodology:      domain.MethodologyWaterfall,
		Status:           domain.ProjectStatusPlanning,
		PlannedStartDate: order.StartDate,
		PlannedEndDate:   order.EndDate,
		Budget:           order.TotalAmount,
		AccountManagerID: order.AccountManagerID,
	}

	if err := tx.Create(project).Error; err != nil {
		return fmt.Errorf("failed to create derived project: %w", err)
	}

	s.logger.Info("project derived from order",
		zap.String("orderID", order.ID.String()),
		zap.String("projectID", project.ID.String()),
		zap.String("code", project.Code))

	return nil
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status != domain.OrderStatusDraft {
		return fmt.Errorf("%w: only draft orders can be deleted", ErrNotEditable)
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// Line items

func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req *domain.AddOrderItemRequest) (*domain.OrderServiceDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrNotEditable, order.Status)
	}

	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	unitPrice := svc.UnitPrice
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}

	item := &domain.OrderService{
		OrderID:         orderID,
		ServiceID:       req.ServiceID,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: req.DiscountPercent,
		SortOrder:       req.SortOrder,
	}

	if err := s.orderRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add order item: %w", err)
	}

	if err := s.recomputeTotal(ctx, orderID); err != nil {
		return nil, err
	}

	item.Service = svc
	dto := mapper.ToOrderServiceDTO(item)
	return &dto, nil
}

func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order.Status.IsTerminal() {
		return fmt.Errorf("%w: order is %s", ErrNotEditable, order.Status)
	}

	item, err := s.orderRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get order item: %w", err)
	}
	if item.OrderID != orderID {
		return ErrNotFound
	}

	if err := s.orderRepo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove order item: %w", err)
	}

	return s.recomputeTotal(ctx, orderID)
}

// recomputeTotal keeps the order total in sync with its line items
func (s *OrderService) recomputeTotal(ctx context.Context, orderID uuid.UUID) error {
	items, err := s.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}

	var total float64
	for i := range items {
		total += items[i].Total()
	}

	err = s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total).Error
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	return nil
}

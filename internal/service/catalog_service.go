package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxKitDepth caps recursive kit resolution
const maxKitDepth = 8

// CatalogService manages the service catalog: simple services, kits and
// their compositions, including recursive effective price resolution.
type CatalogService struct {
	serviceRepo *repository.ServiceRepository
	logger      *zap.Logger
}

func NewCatalogService(
	serviceRepo *repository.ServiceRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

func (s *CatalogService) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.ServiceDTO, error) {
	serviceType := req.Type
	if serviceType == "" {
		serviceType = domain.ServiceTypeSimple
	}
	if !serviceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, serviceType)
	}

	billingType := req.BillingType
	if billingType == "" {
		billingType = domain.BillingTypeFixed
	}
	if !billingType.IsValid() {
		return nil, fmt.Errorf("%w: unknown billing type %q", ErrInvalidInput, billingType)
	}

	if existing, err := s.serviceRepo.GetByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: service code %q already exists", ErrConflict, req.Code)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check service code: %w", err)
	}

	service := &domain.Service{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Type:          serviceType,
		UnitPrice:     req.UnitPrice,
		CostPrice:     req.CostPrice,
		BillingType:   billingType,
		UnitOfMeasure: req.UnitOfMeasure,
		Category:      req.Category,
		IsActive:      true,
	}

	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("service created",
		zap.String("serviceID", service.ID.String()),
		zap.String("code", service.Code),
		zap.String("type", string(service.Type)))

	dto := mapper.ToServiceDTO(service)
	return &dto, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDTO, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	dto := mapper.ToServiceDTO(service)
	return &dto, nil
}

func (s *CatalogService) List(ctx context.Context, page, pageSize int, serviceType *domain.ServiceType, category *string, isActive *bool) ([]domain.ServiceDTO, int64, error) {
	services, total, err := s.serviceRepo.List(ctx, page, pageSize, serviceType, category, isActive)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}

	dtos := make([]domain.ServiceDTO, len(services))
	for i := range services {
		dtos[i] = mapper.ToServiceDTO(&services[i])
	}

	return dtos, total, nil
}

func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]domain.ServiceDTO, error) {
	services, err := s.serviceRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}

	dtos := make([]domain.ServiceDTO, len(services))
	for i := range services {
		dtos[i] = mapper.ToServiceDTO(&services[i])
	}

	return dtos, nil
}

// Update modifies a service. Code and type are immutable after creation.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateServiceRequest) (*domain.ServiceDTO, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if req.BillingType != "" {
		if !req.BillingType.IsValid() {
			return nil, fmt.Errorf("%w: unknown billing type %q", ErrInvalidInput, req.BillingType)
		}
		service.BillingType = req.BillingType
	}

	service.Name = req.Name
	service.Description = req.Description
	service.UnitOfMeasure = req.UnitOfMeasure
	service.Category = req.Category

	if req.UnitPrice != nil {
		service.UnitPrice = *req.UnitPrice
	}
	if req.CostPrice != nil {
		service.CostPrice = *req.CostPrice
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	dto := mapper.ToServiceDTO(service)
	return &dto, nil
}

// Delete removes a service unless line items or kit compositions reference it.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.serviceRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get service: %w", err)
	}

	lineRefs, err := s.serviceRepo.CountLineItemReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count line item references: %w", err)
	}
	kitRefs, err := s.serviceRepo.CountKitReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count kit references: %w", err)
	}
	if lineRefs+kitRefs > 0 {
		return fmt.Errorf("%w: %d line items, %d kit components", ErrServiceInUse, lineRefs, kitRefs)
	}

	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.logger.Info("service deleted", zap.String("serviceID", id.String()))
	return nil
}

// AddComponent adds a component row to a kit. Rejects self-references and
// any edge that would close a cycle in the composition graph.
func (s *CatalogService) AddComponent(ctx context.Context, parentID uuid.UUID, req *domain.AddCompositionRequest) (*domain.ServiceCompositionDTO, error) {
	parent, err := s.serviceRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if parent.Type != domain.ServiceTypeKit {
		return nil, fmt.Errorf("%w: service %s is not a kit", ErrInvalidInput, parent.Code)
	}

	if req.ChildServiceID == parentID {
		return nil, fmt.Errorf("%w: kit cannot contain itself", ErrKitCycle)
	}

	child, err := s.serviceRepo.GetByID(ctx, req.ChildServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: child service not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get child service: %w", err)
	}

	// A cycle exists if the parent is reachable from the child
	if child.Type == domain.ServiceTypeKit {
		reachable, err := s.isReachable(ctx, child.ID, parentID, map[uuid.UUID]bool{}, 0)
		if err != nil {
			return nil, err
		}
		if reachable {
			return nil, fmt.Errorf("%w: %s already contains %s", ErrKitCycle, child.Code, parent.Code)
		}
	}

	comp := &domain.ServiceComposition{
		ParentServiceID:   parentID,
		ChildServiceID:    req.ChildServiceID,
		Quantity:          req.Quantity,
		UnitPriceOverride: req.UnitPriceOverride,
		SortOrder:         req.SortOrder,
	}

	if err := s.serviceRepo.AddComposition(ctx, comp); err != nil {
		return nil, fmt.Errorf("failed to add kit component: %w", err)
	}

	comp.ChildService = child
	dto := mapper.ToServiceCompositionDTO(comp)
	return &dto, nil
}

func (s *CatalogService) UpdateComponent(ctx context.Context, parentID, compositionID uuid.UUID, req *domain.UpdateCompositionRequest) (*domain.ServiceCompositionDTO, error) {
	comp, err := s.serviceRepo.GetComposition(ctx, compositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kit component: %w", err)
	}
	if comp.ParentServiceID != parentID {
		return nil, ErrNotFound
	}

	comp.Quantity = req.Quantity
	comp.UnitPriceOverride = req.UnitPriceOverride
	if req.SortOrder != nil {
		comp.SortOrder = *req.SortOrder
	}

	if err := s.serviceRepo.UpdateComposition(ctx, comp); err != nil {
		return nil, fmt.Errorf("failed to update kit component: %w", err)
	}

	dto := mapper.ToServiceCompositionDTO(comp)
	return &dto, nil
}

func (s *CatalogService) RemoveComponent(ctx context.Context, parentID, compositionID uuid.UUID) error {
	comp, err := s.serviceRepo.GetComposition(ctx, compositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get kit component: %w", err)
	}
	if comp.ParentServiceID != parentID {
		return ErrNotFound
	}

	if err := s.serviceRepo.DeleteComposition(ctx, compositionID); err != nil {
		return fmt.Errorf("failed to remove kit component: %w", err)
	}

	return nil
}

func (s *CatalogService) ListComponents(ctx context.Context, parentID uuid.UUID) ([]domain.ServiceCompositionDTO, error) {
	comps, err := s.serviceRepo.ListComponents(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kit components: %w", err)
	}

	dtos := make([]domain.ServiceCompositionDTO, len(comps))
	for i := range comps {
		dtos[i] = mapper.ToServiceCompositionDTO(&comps[i])
	}

	return dtos, nil
}

// EffectivePrice resolves the sellable price of a service. Simple services
// return their unit price; kits sum component prices recursively, honoring
// per-component price overrides.
func (s *CatalogService) EffectivePrice(ctx context.Context, id uuid.UUID) (*domain.EffectivePriceDTO, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	price, err := s.resolvePrice(ctx, service, map[uuid.UUID]bool{}, 0)
	if err != nil {
		return nil, err
	}

	return &domain.EffectivePriceDTO{
		ServiceID:      service.ID,
		Code:           service.Code,
		Type:           service.Type,
		EffectivePrice: price,
	}, nil
}

func (s *CatalogService) resolvePrice(ctx context.Context, service *domain.Service, visited map[uuid.UUID]bool, depth int) (float64, error) {
	if service.Type != domain.ServiceTypeKit {
		return service.UnitPrice, nil
	}
	if depth >= maxKitDepth {
		return 0, fmt.Errorf("%w: exceeded %d levels at %s", ErrKitDepthExceeded, maxKitDepth, service.Code)
	}
	if visited[service.ID] {
		return 0, fmt.Errorf("%w: at %s", ErrKitCycle, service.Code)
	}
	visited[service.ID] = true
	defer delete(visited, service.ID)

	comps, err := s.serviceRepo.ListComponents(ctx, service.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list kit components: %w", err)
	}

	var total float64
	for i := range comps {
		comp := &comps[i]
		if comp.UnitPriceOverride != nil {
			total += *comp.UnitPriceOverride * comp.Quantity
			continue
		}

		child, err := s.serviceRepo.GetByID(ctx, comp.ChildServiceID)
		if err != nil {
			return 0, fmt.Errorf("failed to get kit component service: %w", err)
		}
		childPrice, err := s.resolvePrice(ctx, child, visited, depth+1)
		if err != nil {
			return 0, err
		}
		total += childPrice * comp.Quantity
	}

	return total, nil
}

// isReachable walks the composition graph from a kit looking for the target
func (s *CatalogService) isReachable(ctx context.Context, fromID, targetID uuid.UUID, visited map[uuid.UUID]bool, depth int) (bool, error) {
	if depth >= maxKitDepth {
		return false, fmt.Errorf("%w: exceeded %d levels", ErrKitDepthExceeded, maxKitDepth)
	}
	if visited[fromID] {
		return false, nil
	}
	visited[fromID] = true

	comps, err := s.serviceRepo.ListComponents(ctx, fromID)
	if err != nil {
		return false, fmt.Errorf("failed to list kit components: %w", err)
	}

	for i := range comps {
		if comps[i].ChildServiceID == targetID {
			return true, nil
		}
		found, err := s.isReachable(ctx, comps[i].ChildServiceID, targetID, visited, depth+1)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}

	return false, nil
}

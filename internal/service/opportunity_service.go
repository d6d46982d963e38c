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

// opportunityTransitions defines the allowed pipeline moves. "lost" is
// reachable from any active stage, "won" only from negotiation.
var opportunityTransitions = map[domain.OpportunityStatus][]domain.OpportunityStatus{
	domain.OpportunityStatusLead:        {domain.OpportunityStatusQualified, domain.OpportunityStatusLost},
	domain.OpportunityStatusQualified:   {domain.OpportunityStatusProposal, domain.OpportunityStatusLost},
	domain.OpportunityStatusProposal:    {domain.OpportunityStatusNegotiation, domain.OpportunityStatusLost},
	domain.OpportunityStatusNegotiation: {domain.OpportunityStatusWon, domain.OpportunityStatusLost},
}

// OpportunityService manages the sales pipeline. Winning an opportunity
// derives an order from it inside a single transaction.
type OpportunityService struct {
	db          *gorm.DB
	oppRepo     *repository.OpportunityRepository
	orderRepo   *repository.OrderRepository
	companyRepo *repository.CompanyRepository
	serviceRepo *repository.ServiceRepository
	numberSvc   *NumberSequenceService
	logger      *zap.Logger
}

func NewOpportunityService(
	db *gorm.DB,
	oppRepo *repository.OpportunityRepository,
	orderRepo *repository.OrderRepository,
	companyRepo *repository.CompanyRepository,
	serviceRepo *repository.ServiceRepository,
	numberSvc *NumberSequenceService,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		db:          db,
		oppRepo:     oppRepo,
		orderRepo:   orderRepo,
		companyRepo: companyRepo,
		serviceRepo: serviceRepo,
		numberSvc:   numberSvc,
		logger:      logger,
	}
}

func (s *OpportunityService) Create(ctx context.Context, req *domain.CreateOpportunityRequest) (*domain.OpportunityDTO, error) {
	if _, err := s.companyRepo.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	code, err := s.numberSvc.Generate(ctx, PrefixOpportunity)
	if err != nil {
		return nil, err
	}

	opp := &domain.Opportunity{
		Code:              code,
		CompanyID:         req.CompanyID,
		ContactID:         req.ContactID,
		Title:             req.Title,
		Description:       req.Description,
		Status:            domain.OpportunityStatusLead,
		Source:            req.Source,
		Amount:            req.Amount,
		WinProbability:    req.WinProbability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		OwnerID:           req.OwnerID,
	}

	if err := s.oppRepo.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info("opportunity created",
		zap.String("opportunityID", opp.ID.String()),
		zap.String("code", opp.Code),
		zap.String("companyID", opp.CompanyID.String()))

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OpportunityDTO, error) {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

func (s *OpportunityService) List(ctx context.Context, page, pageSize int, companyID *uuid.UUID, status *domain.OpportunityStatus, ownerID *uuid.UUID) ([]domain.OpportunityDTO, int64, error) {
	opps, total, err := s.oppRepo.List(ctx, page, pageSize, companyID, status, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opps))
	for i := range opps {
		dtos[i] = mapper.ToOpportunityDTO(&opps[i])
	}

	return dtos, total, nil
}

func (s *OpportunityService) Search(ctx context.Context, query string, limit int) ([]domain.OpportunityDTO, error) {
	opps, err := s.oppRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opps))
	for i := range opps {
		dtos[i] = mapper.ToOpportunityDTO(&opps[i])
	}

	return dtos, nil
}

func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityRequest) (*domain.OpportunityDTO, error) {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if opp.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: opportunity is %s", ErrNotEditable, opp.Status)
	}

	opp.ContactID = req.ContactID
	opp.Title = req.Title
	opp.Description = req.Description
	opp.Source = req.Source
	opp.ExpectedCloseDate = req.ExpectedCloseDate
	opp.OwnerID = req.OwnerID
	opp.CloseReason = req.CloseReason

	if req.Amount != nil {
		opp.Amount = *req.Amount
	}
	if req.WinProbability != nil {
		opp.WinProbability = *req.WinProbability
	}

	if err := s.oppRepo.Update(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

// UpdateStatus moves an opportunity through the pipeline. A transition to
// "won" derives an order in the same transaction; re-winning an already won
// opportunity is rejected by the transition table, so derivation runs once.
func (s *OpportunityService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityStatusRequest) (*domain.OpportunityDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !transitionAllowed(opportunityTransitions[opp.Status], req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opp.Status, req.Status)
	}

	opp.Status = req.Status
	if req.Status.IsTerminal() {
		now := time.Now()
		opp.ActualCloseDate = &now
		opp.CloseReason = req.CloseReason
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(opp).Error; err != nil {
			return fmt.Errorf("failed to update opportunity: %w", err)
		}
		if req.Status == domain.OpportunityStatusWon {
			if err := s.deriveOrderTx(tx, opp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("opportunity status changed",
		zap.String("opportunityID", opp.ID.String()),
		zap.String("status", string(opp.Status)))

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

// deriveOrderTx creates the order for a won opportunity, cloning its line
// items. Skips creation if an order already exists for the opportunity.
func (s *OpportunityService) deriveOrderTx(tx *gorm.DB, opp *domain.Opportunity) error {
	var existing domain.Order
	err := tx.Where("opportunity_id = ?", opp.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing order: %w", err)
	}

	orderNumber, err := s.numberSvc.GenerateTx(tx, PrefixOrder)
	if err != nil {
		return err
	}

	oppID := opp.ID
	order := &domain.Order{
		OrderNumber:   orderNumber,
		OpportunityID: &oppID,
		CompanyID:     opp.CompanyID,
		ContactID:     opp.ContactID,
		Title:         opp.Title,
		Description:   opp.Description,
		Status:        domain.OrderStatusDraft,
		Priority:      domain.OrderPriorityMedium,
	}

	var total float64
	for i := range opp.Items {
		item := &opp.Items[i]
		order.Items = append(order.Items, domain.OrderService{
			ServiceID:       item.ServiceID,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			SortOrder:       item.SortOrder,
		})
		total += item.Total()
	}
	order.TotalAmount = total

	if err := tx.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create derived order: %w", err)
	}

	s.logger.Info("order derived from opportunity",
		zap.String("opportunityID", opp.ID.String()),
		zap.String("orderID", order.ID.String()),
		zap.String("orderNumber", order.OrderNumber))

	return nil
}

func (s *OpportunityService) Delete(ctx context.Context, id uuid.UUID) error {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get opportunity: %w", err)
	}

	if opp.Status == domain.OpportunityStatusWon {
		return fmt.Errorf("%w: won opportunities cannot be deleted", ErrNotEditable)
	}

	if err := s.oppRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	return nil
}

// Line items

func (s *OpportunityService) AddItem(ctx context.Context, opportunityID uuid.UUID, req *domain.AddOpportunityItemRequest) (*domain.OpportunityServiceDTO, error) {
	opp, err := s.oppRepo.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if opp.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: opportunity is %s", ErrNotEditable, opp.Status)
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

	item := &domain.OpportunityService{
		OpportunityID:   opportunityID,
		ServiceID:       req.ServiceID,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: req.DiscountPercent,
		SortOrder:       req.SortOrder,
	}

	if err := s.oppRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add opportunity item: %w", err)
	}

	if err := s.recomputeAmount(ctx, opportunityID); err != nil {
		return nil, err
	}

	item.Service = svc
	dto := mapper.ToOpportunityServiceDTO(item)
	return &dto, nil
}

func (s *OpportunityService) UpdateItem(ctx context.Context, opportunityID, itemID uuid.UUID, req *domain.UpdateOpportunityItemRequest) (*domain.OpportunityServiceDTO, error) {
	opp, err := s.oppRepo.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if opp.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: opportunity is %s", ErrNotEditable, opp.Status)
	}

	item, err := s.oppRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity item: %w", err)
	}
	if item.OpportunityID != opportunityID {
		return nil, ErrNotFound
	}

	item.Description = req.Description
	item.Quantity = req.Quantity
	item.DiscountPercent = req.DiscountPercent
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := s.oppRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update opportunity item: %w", err)
	}

	if err := s.recomputeAmount(ctx, opportunityID); err != nil {
		return nil, err
	}

	dto := mapper.ToOpportunityServiceDTO(item)
	return &dto, nil
}

func (s *OpportunityService) RemoveItem(ctx context.Context, opportunityID, itemID uuid.UUID) error {
	opp, err := s.oppRepo.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get opportunity: %w", err)
	}
	if opp.Status.IsTerminal() {
		return fmt.Errorf("%w: opportunity is %s", ErrNotEditable, opp.Status)
	}

	item, err := s.oppRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get opportunity item: %w", err)
	}
	if item.OpportunityID != opportunityID {
		return ErrNotFound
	}

	if err := s.oppRepo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove opportunity item: %w", err)
	}

	return s.recomputeAmount(ctx, opportunityID)
}

// recomputeAmount keeps the opportunity amount in sync with its line items
func (s *OpportunityService) recomputeAmount(ctx context.Context, opportunityID uuid.UUID) error {
	items, err := s.oppRepo.ListItems(ctx, opportunityID)
	if err != nil {
		return fmt.Errorf("failed to list opportunity items: %w", err)
	}

	var total float64
	for i := range items {
		total += items[i].Total()
	}

	err = s.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Where("id = ?", opportunityID).
		Update("amount", total).Error
	if err != nil {
		return fmt.Errorf("failed to update opportunity amount: %w", err)
	}

	return nil
}

func transitionAllowed[T comparable](allowed []T, target T) bool {
	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

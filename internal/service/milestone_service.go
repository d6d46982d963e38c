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

// milestoneTransitions defines the allowed milestone lifecycle moves
var milestoneTransitions = map[domain.MilestoneStatus][]domain.MilestoneStatus{
	domain.MilestoneStatusPending: {
		domain.MilestoneStatusInProgress,
		domain.MilestoneStatusCompleted,
		domain.MilestoneStatusMissed,
		domain.MilestoneStatusCancelled,
	},
	domain.MilestoneStatusInProgress: {
		domain.MilestoneStatusCompleted,
		domain.MilestoneStatusMissed,
		domain.MilestoneStatusCancelled,
	},
}

type MilestoneService struct {
	milestoneRepo *repository.MilestoneRepository
	projectRepo   *repository.ProjectRepository
	logger        *zap.Logger
}

func NewMilestoneService(
	milestoneRepo *repository.MilestoneRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *MilestoneService {
	return &MilestoneService{
		milestoneRepo: milestoneRepo,
		projectRepo:   projectRepo,
		logger:        logger,
	}
}

func (s *MilestoneService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateMilestoneRequest) (*domain.MilestoneDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	milestoneType := req.Type
	if milestoneType == "" {
		milestoneType = domain.MilestoneTypeDeliverable
	}
	if !milestoneType.IsValid() {
		return nil, fmt.Errorf("%w: unknown milestone type %q", ErrInvalidInput, milestoneType)
	}

	milestone := &domain.Milestone{
		ProjectID:     projectID,
		Name:          req.Name,
		Description:   req.Description,
		Type:          milestoneType,
		Status:        domain.MilestoneStatusPending,
		DueDate:       req.DueDate,
		PaymentAmount: req.PaymentAmount,
		SortOrder:     req.SortOrder,
	}

	if err := s.milestoneRepo.Create(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	dto := mapper.ToMilestoneDTO(milestone, time.Now())
	return &dto, nil
}

func (s *MilestoneService) GetByID(ctx context.Context, projectID, milestoneID uuid.UUID) (*domain.MilestoneDTO, error) {
	milestone, err := s.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return nil, ErrNotFound
	}

	dto := mapper.ToMilestoneDTO(milestone, time.Now())
	return &dto, nil
}

func (s *MilestoneService) List(ctx context.Context, projectID uuid.UUID, status *domain.MilestoneStatus) ([]domain.MilestoneDTO, error) {
	milestones, err := s.milestoneRepo.ListByProject(ctx, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	now := time.Now()
	dtos := make([]domain.MilestoneDTO, len(milestones))
	for i := range milestones {
		dtos[i] = mapper.ToMilestoneDTO(&milestones[i], now)
	}

	return dtos, nil
}

func (s *MilestoneService) Update(ctx context.Context, projectID, milestoneID uuid.UUID, req *domain.UpdateMilestoneRequest) (*domain.MilestoneDTO, error) {
	milestone, err := s.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if req.Type != "" {
		if !req.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown milestone type %q", ErrInvalidInput, req.Type)
		}
		milestone.Type = req.Type
	}

	milestone.Name = req.Name
	milestone.Description = req.Description
	milestone.DueDate = req.DueDate

	if req.PaymentAmount != nil {
		milestone.PaymentAmount = *req.PaymentAmount
	}
	if req.IsPaid != nil {
		milestone.IsPaid = *req.IsPaid
	}
	if req.SortOrder != nil {
		milestone.SortOrder = *req.SortOrder
	}

	if err := s.milestoneRepo.Update(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	dto := mapper.ToMilestoneDTO(milestone, time.Now())
	return &dto, nil
}

func (s *MilestoneService) UpdateStatus(ctx context.Context, projectID, milestoneID uuid.UUID, req *domain.UpdateMilestoneStatusRequest) (*domain.MilestoneDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	milestone, err := s.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if !transitionAllowed(milestoneTransitions[milestone.Status], req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, milestone.Status, req.Status)
	}

	milestone.Status = req.Status
	if req.Status == domain.MilestoneStatusCompleted {
		now := time.Now()
		milestone.CompletedDate = &now
	}

	if err := s.milestoneRepo.Update(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	s.logger.Info("milestone status changed",
		zap.String("milestoneID", milestone.ID.String()),
		zap.String("status", string(milestone.Status)))

	dto := mapper.ToMilestoneDTO(milestone, time.Now())
	return &dto, nil
}

func (s *MilestoneService) Delete(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	milestone, err := s.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get milestone: %w", err)
	}
	if milestone.ProjectID != projectID {
		return ErrNotFound
	}

	if err := s.milestoneRepo.Delete(ctx, milestoneID); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}

	return nil
}

// SweepOverdue marks every pending or in-progress milestone past its due
// date as missed. Returns the number of milestones swept. Called on a
// schedule by the background job runner.
func (s *MilestoneService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.milestoneRepo.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue milestones: %w", err)
	}

	swept := 0
	for i := range overdue {
		milestone := &overdue[i]
		milestone.Status = domain.MilestoneStatusMissed
		if err := s.milestoneRepo.Update(ctx, milestone); err != nil {
			s.logger.Error("failed to mark milestone missed",
				zap.String("milestoneID", milestone.ID.String()),
				zap.Error(err))
			continue
		}
		swept++
		s.logger.Info("milestone marked missed",
			zap.String("milestoneID", milestone.ID.String()),
			zap.String("projectID", milestone.ProjectID.String()),
			zap.Timep("dueDate", milestone.DueDate))
	}

	return swept, nil
}

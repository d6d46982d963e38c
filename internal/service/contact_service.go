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

type ContactService struct {
	contactRepo *repository.ContactRepository
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	if _, err := s.companyRepo.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	// Only one primary contact per company
	if req.IsPrimary {
		if err := s.contactRepo.ClearPrimaryForCompany(ctx, req.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact := &domain.Contact{
		CompanyID:       req.CompanyID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Mobile:          req.Mobile,
		JobTitle:        req.JobTitle,
		Department:      req.Department,
		IsPrimary:       req.IsPrimary,
		IsDecisionMaker: req.IsDecisionMaker,
		Notes:           req.Notes,
		IsActive:        true,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created",
		zap.String("contactID", contact.ID.String()),
		zap.String("companyID", contact.CompanyID.String()))

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) List(ctx context.Context, page, pageSize int, companyID *uuid.UUID, isActive *bool) ([]domain.ContactDTO, int64, error) {
	contacts, total, err := s.contactRepo.List(ctx, page, pageSize, companyID, isActive)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}

	return dtos, total, nil
}

func (s *ContactService) Search(ctx context.Context, query string, limit int) ([]domain.ContactDTO, error) {
	contacts, err := s.contactRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}

	return dtos, nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if req.IsPrimary != nil && *req.IsPrimary && !contact.IsPrimary {
		if err := s.contactRepo.ClearPrimaryForCompany(ctx, contact.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Mobile = req.Mobile
	contact.JobTitle = req.JobTitle
	contact.Department = req.Department
	contact.Notes = req.Notes

	if req.IsPrimary != nil {
		contact.IsPrimary = *req.IsPrimary
	}
	if req.IsDecisionMaker != nil {
		contact.IsDecisionMaker = *req.IsDecisionMaker
	}
	if req.IsActive != nil {
		contact.IsActive = *req.IsActive
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contactRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}

	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil
}

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

type CompanyService struct {
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewCompanyService(
	companyRepo *repository.CompanyRepository,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		logger:      logger,
	}
}

func (s *CompanyService) Create(ctx context.Context, req *domain.CreateCompanyRequest) (*domain.CompanyDTO, error) {
	companyType := req.Type
	if companyType == "" {
		companyType = domain.CompanyTypeProspect
	}
	if !companyType.IsValid() {
		return nil, fmt.Errorf("%w: unknown company type %q", ErrInvalidInput, companyType)
	}

	company := &domain.Company{
		Name:             req.Name,
		Type:             companyType,
		VATNumber:        req.VATNumber,
		TaxCode:          req.TaxCode,
		Email:            req.Email,
		PECEmail:         req.PECEmail,
		Phone:            req.Phone,
		Mobile:           req.Mobile,
		Website:          req.Website,
		Address:          req.Address,
		City:             req.City,
		Province:         req.Province,
		PostalCode:       req.PostalCode,
		Country:          req.Country,
		Industry:         req.Industry,
		Notes:            req.Notes,
		AccountManagerID: req.AccountManagerID,
		IsActive:         true,
	}

	if company.Country == "" {
		company.Country = "Italy"
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("company created",
		zap.String("companyID", company.ID.String()),
		zap.String("name", company.Name),
		zap.String("type", string(company.Type)))

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CompanyDTO, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

func (s *CompanyService) List(ctx context.Context, page, pageSize int, companyType *domain.CompanyType, isActive *bool) ([]domain.CompanyDTO, int64, error) {
	companies, total, err := s.companyRepo.List(ctx, page, pageSize, companyType, isActive)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}

	dtos := make([]domain.CompanyDTO, len(companies))
	for i := range companies {
		dtos[i] = mapper.ToCompanyDTO(&companies[i])
	}

	return dtos, total, nil
}

func (s *CompanyService) Search(ctx context.Context, query string, limit int) ([]domain.CompanyDTO, error) {
	companies, err := s.companyRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}

	dtos := make([]domain.CompanyDTO, len(companies))
	for i := range companies {
		dtos[i] = mapper.ToCompanyDTO(&companies[i])
	}

	return dtos, nil
}

func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if req.Type != "" {
		if !req.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown company type %q", ErrInvalidInput, req.Type)
		}
		company.Type = req.Type
	}

	company.Name = req.Name
	company.VATNumber = req.VATNumber
	company.TaxCode = req.TaxCode
	company.Email = req.Email
	company.PECEmail = req.PECEmail
	company.Phone = req.Phone
	company.Mobile = req.Mobile
	company.Website = req.Website
	company.Address = req.Address
	company.City = req.City
	company.Province = req.Province
	company.PostalCode = req.PostalCode
	if req.Country != "" {
		company.Country = req.Country
	}
	company.Industry = req.Industry
	company.Notes = req.Notes
	company.AccountManagerID = req.AccountManagerID

	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// Deactivate soft-disables a company. Historical records keep pointing at it.
func (s *CompanyService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get company: %w", err)
	}

	if err := s.companyRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate company: %w", err)
	}

	s.logger.Info("company deactivated", zap.String("companyID", id.String()))
	return nil
}

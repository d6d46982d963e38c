package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/analysis"
	"github.com/noscite/crm-api/internal/auth"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/mapper"
	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages project document uploads. Classification by the
// analysis service is best effort: failures leave the document stored but
// marked unprocessed.
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	projectRepo  *repository.ProjectRepository
	storage      storage.Storage
	analysis     *analysis.Client
	logger       *zap.Logger
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	projectRepo *repository.ProjectRepository,
	store storage.Storage,
	analysisClient *analysis.Client,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		projectRepo:  projectRepo,
		storage:      store,
		analysis:     analysisClient,
		logger:       logger,
	}
}

// Upload stores a document and attempts to classify it.
func (s *DocumentService) Upload(ctx context.Context, projectID uuid.UUID, filename, contentType string, content io.Reader) (*domain.ProjectDocumentDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.ProjectDocument{
		ProjectID:   projectID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		Status:      domain.DocumentStatusPending,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		doc.UploadedBy = &userCtx.UserID
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Don't leave orphaned blobs behind
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up stored document",
				zap.String("storagePath", storagePath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.classify(ctx, doc)

	dto := mapper.ToProjectDocumentDTO(doc)
	return &dto, nil
}

// classify sends the stored document to the analysis service. Any failure
// marks the document unprocessed; the upload itself has already succeeded.
func (s *DocumentService) classify(ctx context.Context, doc *domain.ProjectDocument) {
	markUnprocessed := func(reason string, err error) {
		s.logger.Warn("document classification failed",
			zap.String("documentID", doc.ID.String()),
			zap.String("reason", reason),
			zap.Error(err))
		doc.Status = domain.DocumentStatusUnprocessed
		if updErr := s.documentRepo.Update(ctx, doc); updErr != nil {
			s.logger.Error("failed to mark document unprocessed",
				zap.String("documentID", doc.ID.String()),
				zap.Error(updErr))
		}
	}

	if !s.analysis.IsEnabled() {
		markUnprocessed("analysis service disabled", nil)
		return
	}

	content, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		markUnprocessed("download failed", err)
		return
	}
	defer content.Close()

	result, err := s.analysis.Classify(ctx, doc.Filename, doc.ContentType, content)
	if err != nil {
		markUnprocessed("analysis call failed", err)
		return
	}

	doc.Status = domain.DocumentStatusClassified
	doc.Category = result.Category
	doc.Summary = result.Summary
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		s.logger.Error("failed to save classification",
			zap.String("documentID", doc.ID.String()),
			zap.Error(err))
	}
}

// Reclassify re-runs classification for a document that was left unprocessed.
func (s *DocumentService) Reclassify(ctx context.Context, projectID, documentID uuid.UUID) (*domain.ProjectDocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ProjectID != projectID {
		return nil, ErrNotFound
	}

	s.classify(ctx, doc)

	dto := mapper.ToProjectDocumentDTO(doc)
	return &dto, nil
}

func (s *DocumentService) GetByID(ctx context.Context, projectID, documentID uuid.UUID) (*domain.ProjectDocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ProjectID != projectID {
		return nil, ErrNotFound
	}

	dto := mapper.ToProjectDocumentDTO(doc)
	return &dto, nil
}

func (s *DocumentService) List(ctx context.Context, projectID uuid.UUID, status *domain.DocumentStatus) ([]domain.ProjectDocumentDTO, error) {
	docs, err := s.documentRepo.ListByProject(ctx, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.ProjectDocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToProjectDocumentDTO(&docs[i])
	}

	return dtos, nil
}

// Download streams the document content. The caller owns the returned reader.
func (s *DocumentService) Download(ctx context.Context, projectID, documentID uuid.UUID) (io.ReadCloser, *domain.ProjectDocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ProjectID != projectID {
		return nil, nil, ErrNotFound
	}

	content, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download document: %w", err)
	}

	dto := mapper.ToProjectDocumentDTO(doc)
	return content, &dto, nil
}

func (s *DocumentService) Delete(ctx context.Context, projectID, documentID uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ProjectID != projectID {
		return ErrNotFound
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored document",
			zap.String("storagePath", doc.StoragePath),
			zap.Error(err))
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

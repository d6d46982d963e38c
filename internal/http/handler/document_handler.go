package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

// maxUploadSize caps document uploads at 50 MB
const maxUploadSize = 50 << 20

type DocumentHandler struct {
	documentService *service.DocumentService
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// List godoc
// @Summary List project documents
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param status query string false "Filter by status" Enums(pending, classified, unprocessed)
// @Success 200 {array} domain.ProjectDocumentDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var status *domain.DocumentStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.DocumentStatus(v)
		status = &s
	}

	documents, err := h.documentService.List(r.Context(), projectID, status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list documents")
		return
	}

	respondJSON(w, http.StatusOK, documents)
}

// Upload godoc
// @Summary Upload project document
// @Description Upload a document (multipart field "file"). The document is stored and sent to the analysis service for classification.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.ProjectDocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError "File too large"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	document, err := h.documentService.Upload(r.Context(), projectID, header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload document")
		return
	}

	respondJSON(w, http.StatusCreated, document)
}

// GetByID godoc
// @Summary Get document by ID
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200 {object} domain.ProjectDocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents/{documentId} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	document, err := h.documentService.GetByID(r.Context(), projectID, documentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get document")
		return
	}

	respondJSON(w, http.StatusOK, document)
}

// Download godoc
// @Summary Download document content
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Project ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents/{documentId}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	content, document, err := h.documentService.Download(r.Context(), projectID, documentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "download document")
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", document.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename))
	if _, err := io.Copy(w, content); err != nil {
		// Headers are already out; all we can do is log
		h.logger.Warn("document stream interrupted",
			zap.String("documentID", documentID.String()),
			zap.Error(err))
	}
}

// Reclassify godoc
// @Summary Reclassify document
// @Description Re-run classification for a document that was left unprocessed
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200 {object} domain.ProjectDocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents/{documentId}/reclassify [post]
func (h *DocumentHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	document, err := h.documentService.Reclassify(r.Context(), projectID, documentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "reclassify document")
		return
	}

	respondJSON(w, http.StatusOK, document)
}

// Delete godoc
// @Summary Delete document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/documents/{documentId} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(r.Context(), projectID, documentID); err != nil {
		respondServiceError(w, h.logger, err, "delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

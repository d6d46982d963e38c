package handler

import (
	"encoding/json"
	"net/http"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

type MilestoneHandler struct {
	milestoneService *service.MilestoneService
	logger           *zap.Logger
}

func NewMilestoneHandler(milestoneService *service.MilestoneService, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: milestoneService,
		logger:           logger,
	}
}

// List godoc
// @Summary List project milestones
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param status query string false "Filter by status" Enums(pending, in_progress, completed, missed, cancelled)
// @Success 200 {array} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones [get]
func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var status *domain.MilestoneStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.MilestoneStatus(v)
		status = &s
	}

	milestones, err := h.milestoneService.List(r.Context(), projectID, status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list milestones")
		return
	}

	respondJSON(w, http.StatusOK, milestones)
}

// GetByID godoc
// @Summary Get milestone by ID
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param milestoneId path string true "Milestone ID" format(uuid)
// @Success 200 {object} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones/{milestoneId} [get]
func (h *MilestoneHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	milestoneID, err := parseUUIDParam(r, "milestoneId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid milestone ID format")
		return
	}

	milestone, err := h.milestoneService.GetByID(r.Context(), projectID, milestoneID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get milestone")
		return
	}

	respondJSON(w, http.StatusOK, milestone)
}

// Create godoc
// @Summary Create milestone
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateMilestoneRequest true "Milestone data"
// @Success 201 {object} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones [post]
func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req domain.CreateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	milestone, err := h.milestoneService.Create(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create milestone")
		return
	}

	respondJSON(w, http.StatusCreated, milestone)
}

// Update godoc
// @Summary Update milestone
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param milestoneId path string true "Milestone ID" format(uuid)
// @Param request body domain.UpdateMilestoneRequest true "Milestone data"
// @Success 200 {object} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones/{milestoneId} [put]
func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	milestoneID, err := parseUUIDParam(r, "milestoneId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid milestone ID format")
		return
	}

	var req domain.UpdateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	milestone, err := h.milestoneService.Update(r.Context(), projectID, milestoneID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update milestone")
		return
	}

	respondJSON(w, http.StatusOK, milestone)
}

// UpdateStatus godoc
// @Summary Update milestone status
// @Description Move a milestone through its lifecycle
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param milestoneId path string true "Milestone ID" format(uuid)
// @Param request body domain.UpdateMilestoneStatusRequest true "Target status"
// @Success 200 {object} domain.MilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones/{milestoneId}/status [put]
func (h *MilestoneHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	milestoneID, err := parseUUIDParam(r, "milestoneId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid milestone ID format")
		return
	}

	var req domain.UpdateMilestoneStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	milestone, err := h.milestoneService.UpdateStatus(r.Context(), projectID, milestoneID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update milestone status")
		return
	}

	respondJSON(w, http.StatusOK, milestone)
}

// Delete godoc
// @Summary Delete milestone
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param milestoneId path string true "Milestone ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones/{milestoneId} [delete]
func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	milestoneID, err := parseUUIDParam(r, "milestoneId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid milestone ID format")
		return
	}

	if err := h.milestoneService.Delete(r.Context(), projectID, milestoneID); err != nil {
		respondServiceError(w, h.logger, err, "delete milestone")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

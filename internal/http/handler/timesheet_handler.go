package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

type TimesheetHandler struct {
	timesheetService *service.TimesheetService
	logger           *zap.Logger
}

func NewTimesheetHandler(timesheetService *service.TimesheetService, logger *zap.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
		logger:           logger,
	}
}

// List godoc
// @Summary List project timesheets
// @Description Get paginated timesheets for a project, most recent work first
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by user" format(uuid)
// @Param status query string false "Filter by status" Enums(draft, submitted, approved, rejected)
// @Param from query string false "Work date from (YYYY-MM-DD)"
// @Param to query string false "Work date to (YYYY-MM-DD)"
// @Success 200 {object} domain.PaginatedResponse[domain.TimesheetDTO]
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets [get]
func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	page, pageSize := parsePagination(r)

	var userID *uuid.UUID
	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid userId format")
			return
		}
		userID = &id
	}
	var status *domain.TimesheetStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.TimesheetStatus(v)
		status = &s
	}
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
		to = &t
	}

	timesheets, total, err := h.timesheetService.List(r.Context(), projectID, page, pageSize, userID, status, from, to)
	if err != nil {
		respondServiceError(w, h.logger, err, "list timesheets")
		return
	}

	respondJSON(w, http.StatusOK, paginated(timesheets, total, page, pageSize))
}

// GetByID godoc
// @Summary Get timesheet by ID
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param timesheetId path string true "Timesheet ID" format(uuid)
// @Success 200 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets/{timesheetId} [get]
func (h *TimesheetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	timesheetID, err := parseUUIDParam(r, "timesheetId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid timesheet ID format")
		return
	}

	timesheet, err := h.timesheetService.GetByID(r.Context(), projectID, timesheetID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get timesheet")
		return
	}

	respondJSON(w, http.StatusOK, timesheet)
}

// Create godoc
// @Summary Create timesheet entry
// @Description Record hours worked on a project, optionally against a specific task
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateTimesheetRequest true "Timesheet data"
// @Success 201 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets [post]
func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req domain.CreateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	timesheet, err := h.timesheetService.Create(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create timesheet")
		return
	}

	respondJSON(w, http.StatusCreated, timesheet)
}

// Update godoc
// @Summary Update timesheet entry
// @Description Update a timesheet. Only draft and rejected entries can be edited.
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param timesheetId path string true "Timesheet ID" format(uuid)
// @Param request body domain.UpdateTimesheetRequest true "Timesheet data"
// @Success 200 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Entry is not editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets/{timesheetId} [put]
func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	timesheetID, err := parseUUIDParam(r, "timesheetId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid timesheet ID format")
		return
	}

	var req domain.UpdateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	timesheet, err := h.timesheetService.Update(r.Context(), projectID, timesheetID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update timesheet")
		return
	}

	respondJSON(w, http.StatusOK, timesheet)
}

// UpdateStatus godoc
// @Summary Update timesheet status
// @Description Submit, approve or reject a timesheet. Approval and rejection require manager rights. Approved hours feed task and project actuals.
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param timesheetId path string true "Timesheet ID" format(uuid)
// @Param request body domain.UpdateTimesheetStatusRequest true "Target status"
// @Success 200 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Approval requires manager rights"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets/{timesheetId}/status [put]
func (h *TimesheetHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	timesheetID, err := parseUUIDParam(r, "timesheetId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid timesheet ID format")
		return
	}

	var req domain.UpdateTimesheetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	timesheet, err := h.timesheetService.UpdateStatus(r.Context(), projectID, timesheetID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update timesheet status")
		return
	}

	respondJSON(w, http.StatusOK, timesheet)
}

// Delete godoc
// @Summary Delete timesheet entry
// @Description Delete a timesheet. Approved entries cannot be deleted.
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param timesheetId path string true "Timesheet ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/timesheets/{timesheetId} [delete]
func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	timesheetID, err := parseUUIDParam(r, "timesheetId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid timesheet ID format")
		return
	}

	if err := h.timesheetService.Delete(r.Context(), projectID, timesheetID); err != nil {
		respondServiceError(w, h.logger, err, "delete timesheet")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

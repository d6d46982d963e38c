package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/noscite/crm-api/internal/analysis"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	analysisClient *analysis.Client
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, analysisClient *analysis.Client, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		analysisClient: analysisClient,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects with optional filters
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(planning, in_progress, on_hold, completed, cancelled)
// @Param managerId query string false "Filter by project manager" format(uuid)
// @Success 200 {object} domain.PaginatedResponse[domain.ProjectDTO]
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.ProjectStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.ProjectStatus(v)
		status = &s
	}
	var managerID *uuid.UUID
	if v := r.URL.Query().Get("managerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid managerId format")
			return
		}
		managerID = &id
	}

	projects, total, err := h.projectService.List(r.Context(), page, pageSize, status, managerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list projects")
		return
	}

	respondJSON(w, http.StatusOK, paginated(projects, total, page, pageSize))
}

// Search godoc
// @Summary Search projects
// @Description Search projects by code or name
// @Tags Projects
// @Accept json
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/search [get]
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	projects, err := h.projectService.Search(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "search projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// GetByID godoc
// @Summary Get project by ID
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Description Create a standalone project in planning status. Projects derived from started orders are created automatically.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Order already has a project"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// Update godoc
// @Summary Update project
// @Description Update a project. Status changes follow the project lifecycle.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Description Delete a project. Only planning or cancelled projects can be deleted.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Rollup godoc
// @Summary Get project rollup
// @Description Compute task, milestone, hour and cost aggregates for a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectRollupDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/rollup [get]
func (h *ProjectHandler) Rollup(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	rollup, err := h.projectService.Rollup(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "compute project rollup")
		return
	}

	respondJSON(w, http.StatusOK, rollup)
}

// Bootstrap godoc
// @Summary Bootstrap project from document
// @Description Send a planning document (multipart field "file") to the analysis service and create a project with its task tree and milestones in one transaction. An analysis failure creates nothing.
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Planning document"
// @Param hint formData string false "Free-text hint for the analysis service"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Analysis service failed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/bootstrap [post]
func (h *ProjectHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	if !h.analysisClient.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Document analysis is not configured")
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

	skeleton, err := h.analysisClient.Analyze(r.Context(), header.Filename, contentType, file, r.FormValue("hint"))
	if err != nil {
		h.logger.Warn("project bootstrap analysis failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Document analysis failed")
		return
	}

	project, err := h.projectService.CreateFromSkeleton(r.Context(), skeleton)
	if err != nil {
		respondServiceError(w, h.logger, err, "bootstrap project")
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

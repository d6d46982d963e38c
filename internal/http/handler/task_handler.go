package handler

import (
	"encoding/json"
	"net/http"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

// TaskHandler exposes the work breakdown structure of a project. All routes
// are nested under /projects/{id}/tasks.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// Tree godoc
// @Summary Get project task tree
// @Description Get the full task hierarchy of a project, ordered by WBS code
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [get]
func (h *TaskHandler) Tree(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	tree, err := h.taskService.Tree(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get task tree")
		return
	}

	respondJSON(w, http.StatusOK, tree)
}

// GetByID godoc
// @Summary Get task by ID
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), projectID, taskID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Create godoc
// @Summary Create task
// @Description Create a task under an optional parent. The WBS code is assigned from the position in the tree.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// Update godoc
// @Summary Update task
// @Description Update a task. Status changes roll up to ancestors and can optionally propagate to descendants.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.UpdateTaskRequest true "Task data"
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), projectID, taskID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Move godoc
// @Summary Move task
// @Description Move a task to a new parent and position. The whole tree is renumbered. Returns the updated tree.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.MoveTaskRequest true "Target parent and position"
// @Success 200 {array} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Move would create a cycle"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId}/move [post]
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req domain.MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tree, err := h.taskService.Move(r.Context(), projectID, taskID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "move task")
		return
	}

	respondJSON(w, http.StatusOK, tree)
}

// Delete godoc
// @Summary Delete task
// @Description Delete a task and its whole subtree. Surviving siblings are renumbered.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if err := h.taskService.Delete(r.Context(), projectID, taskID); err != nil {
		respondServiceError(w, h.logger, err, "delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceAssignments godoc
// @Summary Replace task assignments
// @Description Replace the companies assigned to a task. Assignees must be active team members. Optionally propagates to descendants.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.ReplaceAssignmentsRequest true "Assignments"
// @Success 200 {array} domain.TaskAssignmentDTO
// @Failure 400 {object} domain.APIError "Company is not a team member"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId}/assignments [put]
func (h *TaskHandler) ReplaceAssignments(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req domain.ReplaceAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	assignments, err := h.taskService.ReplaceAssignments(r.Context(), projectID, taskID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "replace task assignments")
		return
	}

	respondJSON(w, http.StatusOK, assignments)
}

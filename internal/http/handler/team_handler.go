package handler

import (
	"encoding/json"
	"net/http"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teamService *service.TeamService
	logger      *zap.Logger
}

func NewTeamHandler(teamService *service.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		logger:      logger,
	}
}

// List godoc
// @Summary List project team members
// @Description Get the project team with per-member assigned task counts and approved hours
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param isActive query bool false "Filter by active flag"
// @Success 200 {array} domain.TeamMemberDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/team [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	isActive := parseBoolQuery(r, "isActive")

	members, err := h.teamService.List(r.Context(), projectID, isActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "list team members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// Add godoc
// @Summary Add team member
// @Description Add a supplier, partner or freelance company to the project team
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.AddTeamMemberRequest true "Team member data"
// @Success 201 {object} domain.TeamMemberDTO
// @Failure 400 {object} domain.APIError "Company type not allowed on teams"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Company already on the team"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/team [post]
func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req domain.AddTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.teamService.Add(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add team member")
		return
	}

	respondJSON(w, http.StatusCreated, member)
}

// Update godoc
// @Summary Update team member
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param memberId path string true "Team member ID" format(uuid)
// @Param request body domain.UpdateTeamMemberRequest true "Team member data"
// @Success 200 {object} domain.TeamMemberDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/team/{memberId} [put]
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	memberID, err := parseUUIDParam(r, "memberId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team member ID format")
		return
	}

	var req domain.UpdateTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.teamService.Update(r.Context(), projectID, memberID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update team member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// Remove godoc
// @Summary Remove team member
// @Description Remove a company from the project team. Fails while the company still has task assignments.
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param memberId path string true "Team member ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Member still has assigned tasks"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/team/{memberId} [delete]
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}
	memberID, err := parseUUIDParam(r, "memberId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team member ID format")
		return
	}

	if err := h.teamService.Remove(r.Context(), projectID, memberID); err != nil {
		respondServiceError(w, h.logger, err, "remove team member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

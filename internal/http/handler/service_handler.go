package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

// ServiceHandler exposes the service catalog: simple services, kits and
// their compositions.
type ServiceHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewServiceHandler(catalogService *service.CatalogService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// List godoc
// @Summary List catalog services
// @Description Get paginated list of catalog services with optional filters
// @Tags Services
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Filter by type" Enums(simple, kit)
// @Param category query string false "Filter by category"
// @Param isActive query bool false "Filter by active flag"
// @Success 200 {object} domain.PaginatedResponse[domain.ServiceDTO]
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services [get]
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var serviceType *domain.ServiceType
	if t := r.URL.Query().Get("type"); t != "" {
		st := domain.ServiceType(t)
		serviceType = &st
	}
	var category *string
	if c := r.URL.Query().Get("category"); c != "" {
		category = &c
	}
	isActive := parseBoolQuery(r, "isActive")

	services, total, err := h.catalogService.List(r.Context(), page, pageSize, serviceType, category, isActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "list services")
		return
	}

	respondJSON(w, http.StatusOK, paginated(services, total, page, pageSize))
}

// Search godoc
// @Summary Search catalog services
// @Description Search services by code or name
// @Tags Services
// @Accept json
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} domain.ServiceDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/search [get]
func (h *ServiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	services, err := h.catalogService.Search(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "search services")
		return
	}

	respondJSON(w, http.StatusOK, services)
}

// GetByID godoc
// @Summary Get service by ID
// @Description Get a catalog service with its kit components
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID" format(uuid)
// @Success 200 {object} domain.ServiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id} [get]
func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	svc, err := h.catalogService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get service")
		return
	}

	respondJSON(w, http.StatusOK, svc)
}

// Create godoc
// @Summary Create catalog service
// @Tags Services
// @Accept json
// @Produce json
// @Param request body domain.CreateServiceRequest true "Service data"
// @Success 201 {object} domain.ServiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Duplicate code"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services [post]
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create service")
		return
	}

	w.Header().Set("Location", "/api/v1/services/"+svc.ID.String())
	respondJSON(w, http.StatusCreated, svc)
}

// Update godoc
// @Summary Update catalog service
// @Description Update a service. Code and type are immutable.
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID" format(uuid)
// @Param request body domain.UpdateServiceRequest true "Service data"
// @Success 200 {object} domain.ServiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id} [put]
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var req domain.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update service")
		return
	}

	respondJSON(w, http.StatusOK, svc)
}

// Delete godoc
// @Summary Delete catalog service
// @Description Delete a service. Fails if the service is referenced by line items or kits.
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Service is in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id} [delete]
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete service")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EffectivePrice godoc
// @Summary Compute effective price
// @Description Compute the effective price of a service. For kits this resolves the component tree.
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID" format(uuid)
// @Success 200 {object} domain.EffectivePriceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Composition cycle"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/effective-price [get]
func (h *ServiceHandler) EffectivePrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	price, err := h.catalogService.EffectivePrice(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "compute effective price")
		return
	}

	respondJSON(w, http.StatusOK, price)
}

// ListComponents godoc
// @Summary List kit components
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID" format(uuid)
// @Success 200 {array} domain.ServiceCompositionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/components [get]
func (h *ServiceHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	components, err := h.catalogService.ListComponents(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list components")
		return
	}

	respondJSON(w, http.StatusOK, components)
}

// AddComponent godoc
// @Summary Add kit component
// @Description Add a child service to a kit. Rejects compositions that would create a cycle.
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Kit service ID" format(uuid)
// @Param request body domain.AddCompositionRequest true "Component data"
// @Success 201 {object} domain.ServiceCompositionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Composition cycle"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/components [post]
func (h *ServiceHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var req domain.AddCompositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	component, err := h.catalogService.AddComponent(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add component")
		return
	}

	respondJSON(w, http.StatusCreated, component)
}

// UpdateComponent godoc
// @Summary Update kit component
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Kit service ID" format(uuid)
// @Param componentId path string true "Composition ID" format(uuid)
// @Param request body domain.UpdateCompositionRequest true "Component data"
// @Success 200 {object} domain.ServiceCompositionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/components/{componentId} [put]
func (h *ServiceHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}
	componentID, err := parseUUIDParam(r, "componentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req domain.UpdateCompositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	component, err := h.catalogService.UpdateComponent(r.Context(), id, componentID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update component")
		return
	}

	respondJSON(w, http.StatusOK, component)
}

// RemoveComponent godoc
// @Summary Remove kit component
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Kit service ID" format(uuid)
// @Param componentId path string true "Composition ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/components/{componentId} [delete]
func (h *ServiceHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID format")
		return
	}
	componentID, err := parseUUIDParam(r, "componentId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	if err := h.catalogService.RemoveComponent(r.Context(), id, componentID); err != nil {
		respondServiceError(w, h.logger, err, "remove component")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/service"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	contactService *service.ContactService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, contactService *service.ContactService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		contactService: contactService,
		logger:         logger,
	}
}

// List godoc
// @Summary List companies
// @Description Get paginated list of companies with optional filters
// @Tags Companies
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Filter by type" Enums(prospect, customer, supplier, partner)
// @Param isActive query bool false "Filter by active flag"
// @Success 200 {object} domain.PaginatedResponse[domain.CompanyDTO]
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var companyType *domain.CompanyType
	if t := r.URL.Query().Get("type"); t != "" {
		ct := domain.CompanyType(t)
		companyType = &ct
	}
	isActive := parseBoolQuery(r, "isActive")

	companies, total, err := h.companyService.List(r.Context(), page, pageSize, companyType, isActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "list companies")
		return
	}

	respondJSON(w, http.StatusOK, paginated(companies, total, page, pageSize))
}

// Search godoc
// @Summary Search companies
// @Description Search companies by name, VAT number or email
// @Tags Companies
// @Accept json
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} domain.CompanyDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/search [get]
func (h *CompanyHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	companies, err := h.companyService.Search(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "search companies")
		return
	}

	respondJSON(w, http.StatusOK, companies)
}

// GetByID godoc
// @Summary Get company by ID
// @Description Get a company with its contacts
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Success 200 {object} domain.CompanyDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get company")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Create godoc
// @Summary Create company
// @Description Create a new company
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body domain.CreateCompanyRequest true "Company data"
// @Success 201 {object} domain.CompanyDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create company")
		return
	}

	w.Header().Set("Location", "/api/v1/companies/"+company.ID.String())
	respondJSON(w, http.StatusCreated, company)
}

// Update godoc
// @Summary Update company
// @Description Update an existing company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Param request body domain.UpdateCompanyRequest true "Company data"
// @Success 200 {object} domain.CompanyDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var req domain.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update company")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Deactivate godoc
// @Summary Deactivate company
// @Description Soft-deactivate a company. Historical records keep referencing it.
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	if err := h.companyService.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "deactivate company")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListContacts godoc
// @Summary List company contacts
// @Description Get all contacts belonging to a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse[domain.ContactDTO]
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id}/contacts [get]
func (h *CompanyHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID format")
		return
	}
	page, pageSize := parsePagination(r)
	isActive := parseBoolQuery(r, "isActive")

	contacts, total, err := h.contactService.List(r.Context(), page, pageSize, &id, isActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "list contacts")
		return
	}

	respondJSON(w, http.StatusOK, paginated(contacts, total, page, pageSize))
}

// CreateContact godoc
// @Summary Create contact for company
// @Description Create a new contact attached to the specified company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Param request body domain.CreateContactRequest true "Contact data"
// @Success 201 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id}/contacts [post]
func (h *CompanyHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var req domain.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The company in the URL wins over whatever the body carries
	req.CompanyID = companyID

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := h.contactService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create contact")
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Paginated customers ordered by name
// @Tags Customers
// @Produce json
// @Param taxId query string false "Tax identifier, formatted or canonical"
// @Param search query string false "Search by name or tax identifier"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CustomerDTO}
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.CustomerFilters{
		TaxID:  r.URL.Query().Get("taxId"),
		Search: r.URL.Query().Get("search"),
	}

	result, err := h.customerService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list customers")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path int true "Person ID of the customer"
// @Success 200 {object} domain.CustomerDTO
// @Failure 404 {object} domain.APIError
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// Classify godoc
// @Summary Classify customer
// @Description Scores the customer with the configured classifier and stores
// @Description high_potential (prediction 1) or standard_potential (prediction 0).
// @Tags Customers
// @Produce json
// @Param id path int true "Person ID of the customer"
// @Success 200 {object} domain.ClassificationResultDTO
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/classify [post]
func (h *CustomerHandler) Classify(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.customerService.Classify(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "classify customer")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// UpdateStatus godoc
// @Summary Update customer status
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path int true "Person ID of the customer"
// @Param request body domain.UpdateCustomerStatusRequest true "New status"
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /customers/{id}/status [patch]
func (h *CustomerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.UpdateCustomerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	customer, err := h.customerService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleServiceError(w, h.logger, err, "update customer status")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

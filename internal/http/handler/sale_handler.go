package handler

import (
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"go.uber.org/zap"
)

type SaleHandler struct {
	saleService *service.SaleService
	logger      *zap.Logger
}

func NewSaleHandler(saleService *service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// List godoc
// @Summary List sales
// @Description Sales joined with customer, vehicle and salesperson, most recent first
// @Tags Sales
// @Produce json
// @Param customer query int false "Customer person ID"
// @Param vehicle query int false "Vehicle ID"
// @Param salesperson query int false "Salesperson person ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SaleDTO}
// @Failure 400 {object} domain.APIError
// @Router /sales [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.SaleFilters{}
	var err error
	if filters.CustomerID, err = parseOptionalID(r, "customer"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filters.VehicleID, err = parseOptionalID(r, "vehicle"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filters.SalespersonID, err = parseOptionalID(r, "salesperson"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.saleService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list sales")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

package handler

import (
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListSegments godoc
// @Summary List vehicle segments
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.SegmentDTO
// @Router /segments [get]
func (h *CatalogHandler) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.catalogService.ListSegments(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list segments")
		return
	}
	respondJSON(w, http.StatusOK, segments)
}

// ListVehicles godoc
// @Summary List vehicles
// @Description Paginated vehicles ordered by model. Search matches model or brand.
// @Tags Catalog
// @Produce json
// @Param segment query int false "Segment ID"
// @Param search query string false "Case-insensitive substring of model or brand"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VehicleDTO}
// @Failure 400 {object} domain.APIError
// @Router /vehicles [get]
func (h *CatalogHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	segmentID, err := parseOptionalID(r, "segment")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := &repository.VehicleFilters{
		SegmentID: segmentID,
		Search:    r.URL.Query().Get("search"),
	}

	result, err := h.catalogService.ListVehicles(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list vehicles")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

package handler

import (
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetStats godoc
// @Summary Get dashboard statistics
// @Description Total customers, total leads (persons without a customer role) and customer counts
// @Description by status and by classification, largest first.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStats
// @Failure 500 {object} domain.APIError
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "get dashboard stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

package handler

import (
	"gaugyan-payout-service/internal/adapter/http/dto"
	"gaugyan-payout-service/internal/adapter/http/middleware"
	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/pkg/apperror"
	"gaugyan-payout-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler handles the statistics endpoint.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetStats handles GET /api/v1/dashboard/stats. Vendors get their own
// numbers; approvers and admins get the platform-wide view.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	idVal, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	roleVal, _ := c.Get(middleware.CtxRole)

	var vendorID *uuid.UUID
	if role, ok := roleVal.(domain.AccountRole); ok && role == domain.RoleVendor {
		id := idVal.(uuid.UUID)
		vendorID = &id
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DashboardStatsResponse{
		TotalPayouts: stats.TotalPayouts,
		Pending:      stats.Pending,
		Ready:        stats.Ready,
		Completed:    stats.Completed,
		Rejected:     stats.Rejected,
		TotalPaidOut: stats.TotalPaidOut,
	})
}

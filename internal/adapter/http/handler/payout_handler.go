package handler

import (
	"math"
	"strconv"

	"gaugyan-payout-service/internal/adapter/http/dto"
	"gaugyan-payout-service/internal/adapter/http/middleware"
	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/pkg/apperror"
	"gaugyan-payout-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutHandler handles the payout workflow endpoints.
type PayoutHandler struct {
	payoutSvc    ports.PayoutService
	reportingSvc ports.ReportingService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutSvc ports.PayoutService, reportingSvc ports.ReportingService) *PayoutHandler {
	return &PayoutHandler{
		payoutSvc:    payoutSvc,
		reportingSvc: reportingSvc,
	}
}

func accountFromContext(c *gin.Context) (uuid.UUID, domain.AccountRole, bool) {
	idVal, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		return uuid.Nil, "", false
	}
	roleVal, ok := c.Get(middleware.CtxRole)
	if !ok {
		return uuid.Nil, "", false
	}
	id, okID := idVal.(uuid.UUID)
	role, okRole := roleVal.(domain.AccountRole)
	return id, role, okID && okRole
}

func payoutIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout id"))
		return uuid.Nil, false
	}
	return id, true
}

// Initiate handles POST /api/v1/payouts.
func (h *PayoutHandler) Initiate(c *gin.Context) {
	accountID, _, ok := accountFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InitiatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.payoutSvc.Initiate(c.Request.Context(), ports.InitiatePayoutRequest{
		VendorID: accountID,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewPayoutResponse(payout))
}

// Approve handles POST /api/v1/payouts/:id/approve. The authenticated
// account's role is mapped onto the approver vocabulary; the capability
// guard has already excluded vendors.
func (h *PayoutHandler) Approve(c *gin.Context) {
	_, role, ok := accountFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payoutID, ok := payoutIDParam(c)
	if !ok {
		return
	}

	approverRole, ok := domain.ApproverRoleFor(role)
	if !ok {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	payout, err := h.payoutSvc.Approve(c.Request.Context(), payoutID, approverRole)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewPayoutResponse(payout))
}

// Reject handles POST /api/v1/payouts/:id/reject.
func (h *PayoutHandler) Reject(c *gin.Context) {
	payoutID, ok := payoutIDParam(c)
	if !ok {
		return
	}

	var req dto.RejectPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	payout, err := h.payoutSvc.Reject(c.Request.Context(), payoutID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewPayoutResponse(payout))
}

// Execute handles POST /api/v1/payouts/:id/execute.
func (h *PayoutHandler) Execute(c *gin.Context) {
	payoutID, ok := payoutIDParam(c)
	if !ok {
		return
	}

	payout, err := h.payoutSvc.Execute(c.Request.Context(), payoutID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewPayoutResponse(payout))
}

// Get handles GET /api/v1/payouts/:id. Vendors can only see their own
// payouts; cross-vendor lookups read as not found.
func (h *PayoutHandler) Get(c *gin.Context) {
	accountID, role, ok := accountFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payoutID, ok := payoutIDParam(c)
	if !ok {
		return
	}

	payout, err := h.reportingSvc.GetPayout(c.Request.Context(), payoutID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if role == domain.RoleVendor && payout.VendorID != accountID {
		response.Error(c, apperror.ErrNotFound("payout"))
		return
	}

	response.OK(c, dto.NewPayoutResponse(payout))
}

// List handles GET /api/v1/payouts with status filter and pagination.
func (h *PayoutHandler) List(c *gin.Context) {
	accountID, role, ok := accountFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.PayoutListParams{
		Page:     page,
		PageSize: pageSize,
	}

	// Vendors see only their own payouts.
	if role == domain.RoleVendor {
		params.VendorID = &accountID
	} else if v := c.Query("vendor_id"); v != "" {
		vendorID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid vendor_id"))
			return
		}
		params.VendorID = &vendorID
	}

	if s := c.Query("status"); s != "" {
		status := domain.PayoutStatus(s)
		params.Status = &status
	}

	payouts, total, err := h.reportingSvc.ListPayouts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		items = append(items, dto.NewPayoutResponse(&payouts[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.PayoutListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

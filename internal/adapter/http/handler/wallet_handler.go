package handler

import (
	"gaugyan-payout-service/internal/adapter/http/dto"
	"gaugyan-payout-service/internal/adapter/http/middleware"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/pkg/apperror"
	"gaugyan-payout-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc    ports.WalletService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		walletSvc:    walletSvc,
		reportingSvc: reportingSvc,
	}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	accountID, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	vendorID := accountID.(uuid.UUID)

	balance, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		VendorID: vendorID.String(),
		Balance:  balance,
	})
}

// Credit handles POST /api/v1/wallets/credit. Admin-only settlement path
// for recording sales proceeds into a vendor wallet.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid vendor_id"))
		return
	}

	wallet, err := h.walletSvc.Credit(c.Request.Context(), vendorID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		VendorID: wallet.VendorID.String(),
		Balance:  wallet.Balance,
	})
}

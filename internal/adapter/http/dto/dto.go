package dto

import "gaugyan-payout-service/internal/core/domain"

// RegisterRequest is the request body for vendor registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// InitiatePayoutRequest is the request body for payout initiation.
// Amount is in the smallest currency unit (paise).
type InitiatePayoutRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// RejectPayoutRequest is the request body for payout rejection.
type RejectPayoutRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CreditRequest is the request body for crediting a vendor wallet.
type CreditRequest struct {
	VendorID string `json:"vendor_id" binding:"required,uuid"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// ApprovalsView mirrors the three sign-off flags.
type ApprovalsView struct {
	Security bool `json:"security"`
	Finance  bool `json:"finance"`
	Admin    bool `json:"admin"`
}

// PayoutResponse is the response body for payout results.
type PayoutResponse struct {
	ID        string        `json:"id"`
	VendorID  string        `json:"vendor_id"`
	Amount    int64         `json:"amount"`
	Status    string        `json:"status"`
	Approvals ApprovalsView `json:"approvals"`
	AuditLog  []string      `json:"audit_log,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// NewPayoutResponse maps a domain payout to its API shape.
func NewPayoutResponse(p *domain.Payout) PayoutResponse {
	return PayoutResponse{
		ID:       p.ID.String(),
		VendorID: p.VendorID.String(),
		Amount:   p.Amount,
		Status:   string(p.Status),
		Approvals: ApprovalsView{
			Security: p.Approvals.Security,
			Finance:  p.Approvals.Finance,
			Admin:    p.Approvals.Admin,
		},
		AuditLog:  p.AuditLog,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// WalletBalanceResponse is the response for balance query.
type WalletBalanceResponse struct {
	VendorID string `json:"vendor_id"`
	Balance  int64  `json:"balance"`
}

// DashboardStatsResponse is the response for dashboard statistics.
type DashboardStatsResponse struct {
	TotalPayouts int64 `json:"total_payouts"`
	Pending      int64 `json:"pending"`
	Ready        int64 `json:"ready"`
	Completed    int64 `json:"completed"`
	Rejected     int64 `json:"rejected"`
	TotalPaidOut int64 `json:"total_paid_out"`
}

// PayoutListResponse wraps a paginated payout list.
type PayoutListResponse struct {
	Items      []PayoutResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

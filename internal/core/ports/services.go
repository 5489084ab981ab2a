package ports

import (
	"context"
	"time"

	"gaugyan-payout-service/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.AccountRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// BalanceCache is a short-TTL read-through cache for wallet balances.
// All failures degrade to database reads; callers never fail on cache errors.
type BalanceCache interface {
	Get(ctx context.Context, vendorID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, vendorID uuid.UUID, balance int64, ttl time.Duration) error
	Invalidate(ctx context.Context, vendorID uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// PayoutService is the payout approval workflow: creation through
// three-party approval to execution.
type PayoutService interface {
	Initiate(ctx context.Context, req InitiatePayoutRequest) (*domain.Payout, error)
	Approve(ctx context.Context, payoutID uuid.UUID, role domain.ApproverRole) (*domain.Payout, error)
	Reject(ctx context.Context, payoutID uuid.UUID, reason string) (*domain.Payout, error)
	Execute(ctx context.Context, payoutID uuid.UUID) (*domain.Payout, error)
}

// InitiatePayoutRequest holds validated input for payout initiation.
type InitiatePayoutRequest struct {
	VendorID uuid.UUID
	Amount   int64
}

// WalletService manages credit-side balance mutation (sales events, top-ups).
type WalletService interface {
	Credit(ctx context.Context, vendorID uuid.UUID, amount int64) (*domain.Wallet, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for vendor registration.
type RegisterRequest struct {
	Username string
	Password string
}

// ReportingService defines payout/wallet read paths.
type ReportingService interface {
	GetPayout(ctx context.Context, payoutID uuid.UUID) (*domain.Payout, error)
	ListPayouts(ctx context.Context, params PayoutListParams) ([]domain.Payout, int64, error)
	GetStats(ctx context.Context, vendorID *uuid.UUID) (*PayoutStats, error)
	GetWalletBalance(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

// --- Notification ---

// Payout event types delivered to the approver pool.
const (
	EventPayoutRequested = "PAYOUT_REQUESTED"
	EventPayoutReady     = "PAYOUT_READY"
)

// PayoutEvent is the notification payload for approver alerts.
type PayoutEvent struct {
	Type       string    `json:"type"`
	PayoutID   uuid.UUID `json:"payout_id"`
	VendorID   uuid.UUID `json:"vendor_id"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationSink delivers approver alerts. Delivery is best-effort and
// at-most-once; implementations must never block workflow progress and
// must swallow (log) delivery failures.
type NotificationSink interface {
	Notify(ctx context.Context, event PayoutEvent) error
}

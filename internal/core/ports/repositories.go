package ports

import (
	"context"

	"gaugyan-payout-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByVendorID(ctx context.Context, vendorID uuid.UUID) (*domain.Wallet, error)
	GetByVendorIDForUpdate(ctx context.Context, tx pgx.Tx, vendorID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// PayoutRepository defines persistence operations for payout requests
// and their append-only audit logs.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	// GetByIDForUpdate locks the payout row for the duration of the
	// transaction, serializing concurrent mutation per payout.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payout, error)
	// Update persists status and approval flags.
	Update(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	// AppendAudit adds one entry to the payout's audit log.
	AppendAudit(ctx context.Context, tx pgx.Tx, payoutID uuid.UUID, entry string) error
	List(ctx context.Context, params PayoutListParams) ([]domain.Payout, int64, error)
	GetStats(ctx context.Context, vendorID *uuid.UUID) (*PayoutStats, error)
}

// PayoutListParams holds filter + pagination for listing payouts.
type PayoutListParams struct {
	VendorID *uuid.UUID
	Status   *domain.PayoutStatus
	Page     int
	PageSize int
}

// PayoutStats holds aggregated statistics for the dashboard.
type PayoutStats struct {
	TotalPayouts int64
	Pending      int64 // Any pre-READY state
	Ready        int64
	Completed    int64
	Rejected     int64
	TotalPaidOut int64 // Sum of completed payout amounts
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

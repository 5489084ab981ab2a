package service

import (
	"context"
	"fmt"
	"time"

	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. Credits come from
// sales/settlement events outside the payout workflow; debits never
// happen here, payout execution is the only debit path.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	balCache   ports.BalanceCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	balCache ports.BalanceCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		balCache:   balCache,
		transactor: transactor,
		log:        log,
	}
}

// Credit adds funds to the vendor's wallet.
func (s *WalletServiceImpl) Credit(ctx context.Context, vendorID uuid.UUID, amount int64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByVendorIDForUpdate(ctx, dbTx, vendorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	wallet.Balance += amount
	wallet.UpdatedAt = time.Now().UTC()
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := s.balCache.Invalidate(ctx, vendorID); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to invalidate balance cache")
	}

	s.log.Info().
		Str("vendor_id", vendorID.String()).
		Int64("amount", amount).
		Int64("balance", wallet.Balance).
		Msg("wallet credited")

	return wallet, nil
}

package service

import (
	"context"
	"time"

	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const balanceCacheTTL = 30 * time.Second

// reportingService implements ports.ReportingService.
type reportingService struct {
	payoutRepo ports.PayoutRepository
	walletRepo ports.WalletRepository
	balCache   ports.BalanceCache
	log        zerolog.Logger
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	payoutRepo ports.PayoutRepository,
	walletRepo ports.WalletRepository,
	balCache ports.BalanceCache,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		payoutRepo: payoutRepo,
		walletRepo: walletRepo,
		balCache:   balCache,
		log:        log,
	}
}

// GetPayout returns one payout with its full audit log.
func (s *reportingService) GetPayout(ctx context.Context, payoutID uuid.UUID) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	return payout, nil
}

// ListPayouts returns a paginated, filtered payout list.
func (s *reportingService) ListPayouts(ctx context.Context, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
	payouts, total, err := s.payoutRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return payouts, total, nil
}

// GetStats returns aggregated payout statistics, optionally scoped to a vendor.
func (s *reportingService) GetStats(ctx context.Context, vendorID *uuid.UUID) (*ports.PayoutStats, error) {
	stats, err := s.payoutRepo.GetStats(ctx, vendorID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}

// GetWalletBalance returns the vendor's balance, preferring the cache.
func (s *reportingService) GetWalletBalance(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	if balance, ok, err := s.balCache.Get(ctx, vendorID); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("balance cache read failed, falling through to DB")
	} else if ok {
		return balance, nil
	}

	wallet, err := s.walletRepo.GetByVendorID(ctx, vendorID)
	if err != nil {
		return 0, apperror.InternalError(err)
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}

	if err := s.balCache.Set(ctx, vendorID, wallet.Balance, balanceCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to cache balance")
	}

	return wallet.Balance, nil
}

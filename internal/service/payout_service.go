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

// PayoutServiceImpl implements ports.PayoutService.
//
// Every mutation runs inside a database transaction that locks the payout
// row (SELECT FOR UPDATE), so concurrent approvals of the same payout are
// serialized and the all-flags-set check never races a flag update.
type PayoutServiceImpl struct {
	payoutRepo ports.PayoutRepository
	walletRepo ports.WalletRepository
	balCache   ports.BalanceCache
	transactor ports.DBTransactor
	notifier   ports.NotificationSink
	log        zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	payoutRepo ports.PayoutRepository,
	walletRepo ports.WalletRepository,
	balCache ports.BalanceCache,
	transactor ports.DBTransactor,
	notifier ports.NotificationSink,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		payoutRepo: payoutRepo,
		walletRepo: walletRepo,
		balCache:   balCache,
		transactor: transactor,
		notifier:   notifier,
		log:        log,
	}
}

// Initiate creates a payout request in PENDING_APPROVAL and alerts the
// approver pool. The requested amount must be positive and must not
// exceed the vendor's current balance.
func (s *PayoutServiceImpl) Initiate(ctx context.Context, req ports.InitiatePayoutRequest) (*domain.Payout, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.GetByVendorID(ctx, req.VendorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if req.Amount > wallet.Balance {
		return nil, apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	payout := &domain.Payout{
		ID:        uuid.New(),
		VendorID:  req.VendorID,
		Amount:    req.Amount,
		Status:    domain.PayoutStatusPendingApproval,
		CreatedAt: now,
		UpdatedAt: now,
	}
	payout.Audit(now, "payout of %d initiated by vendor %s", req.Amount, req.VendorID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.dispatch(ctx, ports.EventPayoutRequested, payout)

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("vendor_id", req.VendorID.String()).
		Int64("amount", req.Amount).
		Msg("payout initiated")

	return payout, nil
}

// Approve applies one role's sign-off.
//
// SECURITY advances status only from PENDING_APPROVAL; FINANCE only from
// APPROVED_SECURITY (approving as FINANCE first sets the flag without
// moving status, the recorded sequence matters); ADMIN never drives a
// transition on its own. Whenever all three flags hold, the status is
// forced to READY_FOR_PAYOUT. Repeating a role's approval is a no-op
// beyond re-setting the same flag.
func (s *PayoutServiceImpl) Approve(ctx context.Context, payoutID uuid.UUID, role domain.ApproverRole) (*domain.Payout, error) {
	if _, ok := domain.ParseApproverRole(string(role)); !ok {
		return nil, apperror.ErrUnknownRole(string(role))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payout, err := s.payoutRepo.GetByIDForUpdate(ctx, dbTx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if payout.IsTerminal() {
		return nil, apperror.ErrWorkflowClosed()
	}

	now := time.Now().UTC()
	var entries []string

	switch role {
	case domain.ApproverSecurity:
		payout.Approvals.Security = true
		if payout.Status == domain.PayoutStatusPendingApproval {
			payout.Status = domain.PayoutStatusApprovedSecurity
		}
	case domain.ApproverFinance:
		payout.Approvals.Finance = true
		if payout.Status == domain.PayoutStatusApprovedSecurity {
			payout.Status = domain.PayoutStatusApprovedFinance
		}
	case domain.ApproverAdmin:
		payout.Approvals.Admin = true
	}
	entries = append(entries, payout.Audit(now, "approved by %s", role))

	becameReady := false
	if payout.Approvals.All() && payout.Status != domain.PayoutStatusReadyForPayout {
		payout.Status = domain.PayoutStatusReadyForPayout
		entries = append(entries, payout.Audit(now, "ready for processing"))
		becameReady = true
	}
	payout.UpdatedAt = now

	if err := s.payoutRepo.Update(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout: %w", err))
	}
	for _, entry := range entries {
		if err := s.payoutRepo.AppendAudit(ctx, dbTx, payout.ID, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append audit: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if becameReady {
		s.dispatch(ctx, ports.EventPayoutReady, payout)
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("role", string(role)).
		Str("status", string(payout.Status)).
		Msg("payout approved")

	return payout, nil
}

// Reject moves any non-terminal payout to REJECTED. Approval flags are
// left as recorded; the state is terminal.
func (s *PayoutServiceImpl) Reject(ctx context.Context, payoutID uuid.UUID, reason string) (*domain.Payout, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payout, err := s.payoutRepo.GetByIDForUpdate(ctx, dbTx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if payout.IsTerminal() {
		return nil, apperror.ErrWorkflowClosed()
	}

	now := time.Now().UTC()
	payout.Status = domain.PayoutStatusRejected
	payout.UpdatedAt = now
	entry := payout.Audit(now, "rejected: %s", reason)

	if err := s.payoutRepo.Update(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout: %w", err))
	}
	if err := s.payoutRepo.AppendAudit(ctx, dbTx, payout.ID, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append audit: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("reason", reason).
		Msg("payout rejected")

	return payout, nil
}

// Execute debits the vendor wallet and completes the payout. Legal only
// from READY_FOR_PAYOUT. The debit and the status transition commit
// atomically; a second execution finds COMPLETED and is rejected, so the
// wallet is debited exactly once per payout.
func (s *PayoutServiceImpl) Execute(ctx context.Context, payoutID uuid.UUID) (*domain.Payout, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	payout, err := s.payoutRepo.GetByIDForUpdate(ctx, dbTx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if payout.IsTerminal() {
		return nil, apperror.ErrWorkflowClosed()
	}
	if payout.Status != domain.PayoutStatusReadyForPayout {
		return nil, apperror.ErrPayoutNotReady()
	}

	wallet, err := s.walletRepo.GetByVendorIDForUpdate(ctx, dbTx, payout.VendorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	now := time.Now().UTC()

	if wallet.Balance < payout.Amount {
		// Status stays READY_FOR_PAYOUT; only the failure is recorded.
		entry := payout.Audit(now, "payout execution failed: insufficient funds")
		if err := s.payoutRepo.AppendAudit(ctx, dbTx, payout.ID, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append audit: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		s.log.Warn().
			Str("payout_id", payout.ID.String()).
			Int64("amount", payout.Amount).
			Int64("balance", wallet.Balance).
			Msg("payout execution failed: insufficient funds")
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance-payout.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
	}

	// PROCESSING is a transient hop inside the atomic step; only the
	// final COMPLETED status is persisted, both hops are audited.
	entries := []string{
		payout.Audit(now, "processing payout of %d", payout.Amount),
	}
	payout.Status = domain.PayoutStatusCompleted
	payout.UpdatedAt = now
	entries = append(entries, payout.Audit(now, "payout completed"))

	if err := s.payoutRepo.Update(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout: %w", err))
	}
	for _, entry := range entries {
		if err := s.payoutRepo.AppendAudit(ctx, dbTx, payout.ID, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append audit: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Best-effort: the cached balance is stale after the debit.
	if err := s.balCache.Invalidate(ctx, payout.VendorID); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", payout.VendorID.String()).Msg("failed to invalidate balance cache")
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("vendor_id", payout.VendorID.String()).
		Int64("amount", payout.Amount).
		Msg("payout executed")

	return payout, nil
}

// dispatch hands the event to the notification sink. Delivery is
// best-effort; failures are logged, never propagated.
func (s *PayoutServiceImpl) dispatch(ctx context.Context, eventType string, payout *domain.Payout) {
	if s.notifier == nil {
		return
	}
	event := ports.PayoutEvent{
		Type:       eventType,
		PayoutID:   payout.ID,
		VendorID:   payout.VendorID,
		Amount:     payout.Amount,
		Status:     string(payout.Status),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("payout_id", payout.ID.String()).
			Str("event", eventType).
			Msg("approver notification failed")
	}
}

package service

import (
	"context"
	"testing"

	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports/mocks"
	"gaugyan-payout-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	walletRepo *mocks.MockWalletRepository
	balCache   *mocks.MockBalanceCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		balCache:   mocks.NewMockBalanceCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(d.walletRepo, d.balCache, d.transactor, zerolog.Nop())
	return d
}

func TestWalletService_Credit_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	vendorID := uuid.New()
	walletID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByVendorIDForUpdate(ctx, tx, vendorID).Return(&domain.Wallet{
		ID:       walletID,
		VendorID: vendorID,
		Balance:  10000,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(35000)).Return(nil)
	d.balCache.EXPECT().Invalidate(ctx, vendorID).Return(nil)

	wallet, err := d.svc.Credit(ctx, vendorID, 25000)
	require.NoError(t, err)
	assert.Equal(t, int64(35000), wallet.Balance)
}

func TestWalletService_Credit_InvalidAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -500} {
		_, err := d.svc.Credit(context.Background(), uuid.New(), amount)
		require.Error(t, err)
		appErr := err.(*apperror.AppError)
		assert.Equal(t, "WF_001", appErr.Code)
	}
}

func TestWalletService_Credit_WalletNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	vendorID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByVendorIDForUpdate(ctx, tx, vendorID).Return(nil, nil)

	_, err := d.svc.Credit(ctx, vendorID, 1000)
	require.Error(t, err)
	appErr := err.(*apperror.AppError)
	assert.Equal(t, "WF_005", appErr.Code)
}

func TestWalletService_Credit_CacheInvalidationFailureIgnored(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	vendorID := uuid.New()
	walletID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByVendorIDForUpdate(ctx, tx, vendorID).Return(&domain.Wallet{
		ID:       walletID,
		VendorID: vendorID,
		Balance:  0,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(500)).Return(nil)
	d.balCache.EXPECT().Invalidate(ctx, vendorID).Return(assert.AnError)

	wallet, err := d.svc.Credit(ctx, vendorID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), wallet.Balance)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaugyan-payout-service/internal/adapter/http/dto"
	"gaugyan-payout-service/internal/adapter/http/middleware"
	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"
	"gaugyan-payout-service/internal/core/ports/mocks"
	"gaugyan-payout-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testPayout(vendorID uuid.UUID) *domain.Payout {
	now := time.Now()
	return &domain.Payout{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Amount:    50000,
		Status:    domain.PayoutStatusPendingApproval,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func authedContext(w *httptest.ResponseRecorder, accountID uuid.UUID, role domain.AccountRole) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, accountID)
	c.Set(middleware.CtxRole, role)
	return c, r
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	accountID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username: "testvendor",
		Password: "password123",
	}).Return(&domain.Account{
		ID:       accountID,
		Username: "testvendor",
		Role:     domain.RoleVendor,
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "testvendor",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, accountID.String(), data["account_id"])
	assert.Equal(t, "testvendor", data["username"])
	assert.Equal(t, "VENDOR", data["role"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUsernameExists())

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "taken",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testvendor", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "testvendor",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "badpassword").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "bad",
		Password: "badpassword",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Payout Handler Tests ---

func TestInitiatePayout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	vendorID := uuid.New()
	payout := testPayout(vendorID)

	mockPayout.EXPECT().Initiate(gomock.Any(), ports.InitiatePayoutRequest{
		VendorID: vendorID,
		Amount:   50000,
	}).Return(payout, nil)

	body, _ := json.Marshal(dto.InitiatePayoutRequest{Amount: 50000})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, vendorID, domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Initiate(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, payout.ID.String(), data["id"])
	assert.Equal(t, "PENDING_APPROVAL", data["status"])
}

func TestInitiatePayout_MissingIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.Initiate(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInitiatePayout_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	vendorID := uuid.New()
	mockPayout.EXPECT().Initiate(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	body, _ := json.Marshal(dto.InitiatePayoutRequest{Amount: 9999999})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, vendorID, domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Initiate(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestApprovePayout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	vendorID := uuid.New()
	payout := testPayout(vendorID)
	payout.Status = domain.PayoutStatusApprovedSecurity
	payout.Approvals.Security = true

	mockPayout.EXPECT().Approve(gomock.Any(), payout.ID, domain.ApproverSecurity).Return(payout, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleSecurity)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: payout.ID.String()}}

	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "APPROVED_SECURITY", data["status"])
	approvals := data["approvals"].(map[string]interface{})
	assert.Equal(t, true, approvals["security"])
}

func TestApprovePayout_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleSecurity)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Approve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectPayout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	vendorID := uuid.New()
	payout := testPayout(vendorID)
	payout.Status = domain.PayoutStatusRejected

	mockPayout.EXPECT().Reject(gomock.Any(), payout.ID, "invoice mismatch").Return(payout, nil)

	body, _ := json.Marshal(dto.RejectPayoutRequest{Reason: "invoice mismatch"})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleFinance)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: payout.ID.String()}}

	h.Reject(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExecutePayout_NotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	payoutID := uuid.New()
	mockPayout.EXPECT().Execute(gomock.Any(), payoutID).Return(nil, apperror.ErrPayoutNotReady())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleFinance)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: payoutID.String()}}

	h.Execute(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetPayout_VendorCrossTenantReadsAsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	otherVendor := uuid.New()
	payout := testPayout(otherVendor)
	mockReporting.EXPECT().GetPayout(gomock.Any(), payout.ID).Return(payout, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: payout.ID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPayouts_VendorScopedToOwn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	vendorID := uuid.New()
	mockReporting.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
			require.NotNil(t, params.VendorID)
			assert.Equal(t, vendorID, *params.VendorID)
			return []domain.Payout{*testPayout(vendorID)}, 1, nil
		})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, vendorID, domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=1&page_size=20&vendor_id="+uuid.NewString(), nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

func TestListPayouts_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewPayoutHandler(mockPayout, mockReporting)

	mockReporting.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).Return(nil, int64(0), apperror.InternalError(errors.New("db down")))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mockWallet, mockReporting)

	vendorID := uuid.New()
	mockReporting.EXPECT().GetWalletBalance(gomock.Any(), vendorID).Return(int64(100000), nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, vendorID, domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100000), data["balance"])
	assert.Equal(t, vendorID.String(), data["vendor_id"])
}

func TestCredit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mockWallet, mockReporting)

	vendorID := uuid.New()
	mockWallet.EXPECT().Credit(gomock.Any(), vendorID, int64(25000)).Return(&domain.Wallet{
		ID:       uuid.New(),
		VendorID: vendorID,
		Balance:  75000,
	}, nil)

	body, _ := json.Marshal(dto.CreditRequest{
		VendorID: vendorID.String(),
		Amount:   25000,
	})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Credit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(75000), data["balance"])
}

func TestCredit_InvalidVendorID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewWalletHandler(mockWallet, mockReporting)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"vendor_id":"nope","amount":100}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Credit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Dashboard Handler Tests ---

func TestGetStats_VendorScoped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewDashboardHandler(mockReporting)

	vendorID := uuid.New()
	mockReporting.EXPECT().GetStats(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, scope *uuid.UUID) (*ports.PayoutStats, error) {
			require.NotNil(t, scope)
			assert.Equal(t, vendorID, *scope)
			return &ports.PayoutStats{TotalPayouts: 5, Completed: 2, TotalPaidOut: 120000}, nil
		})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, vendorID, domain.RoleVendor)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["total_payouts"])
	assert.Equal(t, float64(120000), data["total_paid_out"])
}

func TestGetStats_AdminPlatformWide(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewDashboardHandler(mockReporting)

	mockReporting.EXPECT().GetStats(gomock.Any(), nil).Return(&ports.PayoutStats{TotalPayouts: 42}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Health Check Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string               { return f.name }
func (f fakeChecker) Ping(context.Context) error { return f.err }

var _ ports.HealthChecker = fakeChecker{}

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_DependencyDown(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redisDep["status"])
}

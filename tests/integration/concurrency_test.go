package integration

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gaugyan-payout-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentApprovals fires SECURITY and FINANCE sign-offs for the
// same payout at the same time. The transactor serializes the two
// mutations, so both flags must be recorded and both audit entries kept
// regardless of which one wins the race.
func TestConcurrentApprovals(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	vendorID := registerVendor(t, app, "concurrent_vendor", "StrongPass123")
	app.seedApprover(t, "sec_officer", "StrongPass123", domain.RoleSecurity)
	app.seedApprover(t, "fin_officer", "StrongPass123", domain.RoleFinance)
	app.seedApprover(t, "platform_admin", "StrongPass123", domain.RoleAdmin)

	vendorToken := login(t, app, "concurrent_vendor", "StrongPass123")
	secToken := login(t, app, "sec_officer", "StrongPass123")
	finToken := login(t, app, "fin_officer", "StrongPass123")
	adminToken := login(t, app, "platform_admin", "StrongPass123")

	resp, _ := postJSON(t, app.server.URL+"/api/v1/wallets/credit", adminToken,
		fmt.Sprintf(`{"vendor_id":%q,"amount":100000}`, vendorID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, app.server.URL+"/api/v1/payouts", vendorToken, `{"amount":50000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payoutID := body["data"].(map[string]interface{})["id"].(string)

	var wg sync.WaitGroup
	approve := func(token string) {
		defer wg.Done()
		r, _ := postJSON(t, app.server.URL+"/api/v1/payouts/"+payoutID+"/approve", token, `{}`)
		assert.Equal(t, http.StatusOK, r.StatusCode)
	}

	wg.Add(2)
	go approve(secToken)
	go approve(finToken)
	wg.Wait()

	resp, body = getJSON(t, app.server.URL+"/api/v1/payouts/"+payoutID, vendorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})

	approvals := data["approvals"].(map[string]interface{})
	assert.Equal(t, true, approvals["security"], "security flag must survive the race")
	assert.Equal(t, true, approvals["finance"], "finance flag must survive the race")

	auditLog := data["audit_log"].([]interface{})
	var secEntries, finEntries int
	for _, e := range auditLog {
		entry := e.(string)
		if strings.Contains(entry, "approved by SECURITY") {
			secEntries++
		}
		if strings.Contains(entry, "approved by FINANCE") {
			finEntries++
		}
	}
	assert.Equal(t, 1, secEntries, "exactly one security approval recorded")
	assert.Equal(t, 1, finEntries, "exactly one finance approval recorded")
}

// TestConcurrentExecutions fires many execute calls for one ready payout.
// Exactly one may debit the wallet; every other call must see a closed
// workflow.
func TestConcurrentExecutions(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	vendorID := registerVendor(t, app, "concurrent_vendor", "StrongPass123")
	app.seedApprover(t, "sec_officer", "StrongPass123", domain.RoleSecurity)
	app.seedApprover(t, "fin_officer", "StrongPass123", domain.RoleFinance)
	app.seedApprover(t, "platform_admin", "StrongPass123", domain.RoleAdmin)

	vendorToken := login(t, app, "concurrent_vendor", "StrongPass123")
	secToken := login(t, app, "sec_officer", "StrongPass123")
	finToken := login(t, app, "fin_officer", "StrongPass123")
	adminToken := login(t, app, "platform_admin", "StrongPass123")

	resp, _ := postJSON(t, app.server.URL+"/api/v1/wallets/credit", adminToken,
		fmt.Sprintf(`{"vendor_id":%q,"amount":100000}`, vendorID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, app.server.URL+"/api/v1/payouts", vendorToken, `{"amount":50000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payoutID := body["data"].(map[string]interface{})["id"].(string)

	for _, token := range []string{secToken, finToken, adminToken} {
		r, _ := postJSON(t, app.server.URL+"/api/v1/payouts/"+payoutID+"/approve", token, `{}`)
		require.Equal(t, http.StatusOK, r.StatusCode)
	}

	concurrency := 10
	var wg sync.WaitGroup
	var completed atomic.Int64
	var closed atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := postJSON(t, app.server.URL+"/api/v1/payouts/"+payoutID+"/execute", finToken, `{}`)
			switch r.StatusCode {
			case http.StatusOK:
				completed.Add(1)
			case http.StatusConflict:
				closed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), completed.Load(), "exactly one execution may complete")
	assert.Equal(t, int64(concurrency-1), closed.Load(), "every other execution must see a closed workflow")

	// The wallet was debited exactly once.
	resp, body = getJSON(t, app.server.URL+"/api/v1/wallets/balance", vendorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(50000), body["data"].(map[string]interface{})["balance"])
}

// TestConcurrentInitiations verifies independent payout requests do not
// interfere with each other.
func TestConcurrentInitiations(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	vendorID := registerVendor(t, app, "busy_vendor", "StrongPass123")
	app.seedApprover(t, "platform_admin", "StrongPass123", domain.RoleAdmin)

	vendorToken := login(t, app, "busy_vendor", "StrongPass123")
	adminToken := login(t, app, "platform_admin", "StrongPass123")

	resp, _ := postJSON(t, app.server.URL+"/api/v1/wallets/credit", adminToken,
		fmt.Sprintf(`{"vendor_id":%q,"amount":1000000}`, vendorID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	concurrency := 20
	var wg sync.WaitGroup
	var created atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := postJSON(t, app.server.URL+"/api/v1/payouts", vendorToken, `{"amount":1000}`)
			if r.StatusCode == http.StatusCreated {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), created.Load())

	resp, body := getJSON(t, app.server.URL+"/api/v1/payouts?page=1&page_size=100", vendorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(concurrency), data["total"])
}

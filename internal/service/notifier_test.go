package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"gaugyan-payout-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingClient records delivered requests and signals each one on a
// channel so tests can wait for the detached delivery goroutine.
type capturingClient struct {
	status    int
	delivered chan *capturedRequest
}

type capturedRequest struct {
	contentType string
	signature   string
	body        []byte
}

func newCapturingClient(status int) *capturingClient {
	return &capturingClient{
		status:    status,
		delivered: make(chan *capturedRequest, 8),
	}
}

func (c *capturingClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	c.delivered <- &capturedRequest{
		contentType: req.Header.Get("Content-Type"),
		signature:   req.Header.Get("X-GauGyan-Signature"),
		body:        body,
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func waitForDelivery(t *testing.T, client *capturingClient) *capturedRequest {
	t.Helper()
	select {
	case req := <-client.delivered:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
		return nil
	}
}

func TestWebhookNotifier_DeliversSignedEvent(t *testing.T) {
	client := newCapturingClient(http.StatusOK)
	sigSvc := NewHMACSignatureService()
	notifier := NewWebhookNotifier("https://approvers.gaugyan.in/hooks/payouts", "webhook-secret", sigSvc, client, zerolog.Nop())

	event := ports.PayoutEvent{
		Type:     ports.EventPayoutRequested,
		PayoutID: uuid.New(),
		VendorID: uuid.New(),
		Amount:   50000,
		Status:   "PENDING_APPROVAL",
	}
	require.NoError(t, notifier.Notify(context.Background(), event))

	req := waitForDelivery(t, client)
	assert.Equal(t, "application/json", req.contentType)

	// signature must verify against the exact delivered body
	assert.True(t, sigSvc.Verify("webhook-secret", string(req.body), req.signature))

	var got ports.PayoutEvent
	require.NoError(t, json.Unmarshal(req.body, &got))
	assert.Equal(t, ports.EventPayoutRequested, got.Type)
	assert.Equal(t, event.PayoutID, got.PayoutID)
	assert.Equal(t, int64(50000), got.Amount)
}

func TestWebhookNotifier_NoURLSkipsDelivery(t *testing.T) {
	client := newCapturingClient(http.StatusOK)
	notifier := NewWebhookNotifier("", "secret", NewHMACSignatureService(), client, zerolog.Nop())

	err := notifier.Notify(context.Background(), ports.PayoutEvent{Type: ports.EventPayoutReady})
	require.NoError(t, err)

	select {
	case <-client.delivered:
		t.Fatal("unexpected delivery with empty webhook URL")
	case <-time.After(50 * time.Millisecond):
	}
}

type failingClient struct {
	calls chan struct{}
}

func (c *failingClient) Do(*http.Request) (*http.Response, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return nil, assert.AnError
}

func TestWebhookNotifier_DeliveryFailureNeverPropagates(t *testing.T) {
	client := &failingClient{calls: make(chan struct{}, 1)}
	notifier := NewWebhookNotifier("https://approvers.gaugyan.in/hooks/payouts", "secret", NewHMACSignatureService(), client, zerolog.Nop())

	err := notifier.Notify(context.Background(), ports.PayoutEvent{
		Type:     ports.EventPayoutReady,
		PayoutID: uuid.New(),
	})
	require.NoError(t, err)

	select {
	case <-client.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery attempt")
	}
}

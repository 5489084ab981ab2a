package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gaugyan-payout-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// notifyRetryIntervals spaces out redelivery attempts after a failure.
var notifyRetryIntervals = []time.Duration{
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookNotifier implements ports.NotificationSink by POSTing signed
// JSON events to the approver pool's webhook URL. Delivery happens on a
// detached goroutine; Notify never blocks on the network and never
// returns a delivery error.
type WebhookNotifier struct {
	webhookURL string
	secret     string
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewWebhookNotifier creates a new webhook-backed notification sink.
func NewWebhookNotifier(
	webhookURL string,
	secret string,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	log zerolog.Logger,
) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		secret:     secret,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		log:        log,
	}
}

// Notify enqueues delivery of the event to the approver pool.
func (n *WebhookNotifier) Notify(ctx context.Context, event ports.PayoutEvent) error {
	if n.webhookURL == "" {
		n.log.Debug().Str("event", event.Type).Msg("notifier: no webhook URL configured, skipping")
		return nil
	}

	payloadBytes, err := json.Marshal(event)
	if err != nil {
		n.log.Error().Err(err).Str("event", event.Type).Msg("notifier: failed to marshal event")
		return nil
	}

	signature := n.sigSvc.Sign(n.secret, string(payloadBytes))

	go n.deliverWithRetries(payloadBytes, signature, event)

	return nil
}

// deliverWithRetries attempts delivery with backoff. All failures end in
// a log line, never in a propagated error.
func (n *WebhookNotifier) deliverWithRetries(payload []byte, signature string, event ports.PayoutEvent) {
	for attempt := 0; attempt <= len(notifyRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(notifyRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, n.webhookURL, bytes.NewReader(payload))
		if err != nil {
			n.log.Error().Err(err).Str("event", event.Type).Msg("notifier: failed to create request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GauGyan-Signature", signature)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			n.log.Warn().Err(err).
				Str("event", event.Type).
				Str("payout_id", event.PayoutID.String()).
				Int("attempt", attempt+1).
				Msg("notifier: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Info().
				Str("event", event.Type).
				Str("payout_id", event.PayoutID.String()).
				Int("attempt", attempt+1).
				Msg("notifier: delivered")
			return
		}

		n.log.Warn().
			Str("event", event.Type).
			Str("payout_id", event.PayoutID.String()).
			Int("attempt", attempt+1).
			Int("status", resp.StatusCode).
			Msg("notifier: non-2xx response, retrying")
	}

	n.log.Error().
		Str("event", event.Type).
		Str("payout_id", event.PayoutID.String()).
		Msg("notifier: all retry attempts exhausted")
}

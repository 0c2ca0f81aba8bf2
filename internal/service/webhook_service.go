package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// WebhookPayload is the JSON structure POSTed to the merchant webhook_url.
type WebhookPayload struct {
	Event         string            `json:"event"`
	TransactionID string            `json:"transaction_id"`
	ReferenceID   string            `json:"reference_id"`
	Status        string            `json:"status"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     string            `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webhookJob struct {
	transaction *domain.Transaction
	event       domain.WebhookEvent
}

// webhookNotifier implements ports.WebhookNotifier on a bounded worker pool.
// Deliveries are single-shot: one POST per event, success is any 2xx, and a
// failure is logged and recorded but never retried.
type webhookNotifier struct {
	merchantRepo ports.MerchantRepository
	webhookRepo  ports.WebhookRepository
	encSvc       ports.EncryptionService
	sigSvc       ports.SignatureService
	httpClient   HTTPClient
	timeout      time.Duration
	queue        chan webhookJob
	wg           sync.WaitGroup
	closeOnce    sync.Once
	log          zerolog.Logger
}

// NewWebhookNotifier creates a notifier and starts its worker pool.
func NewWebhookNotifier(
	merchantRepo ports.MerchantRepository,
	webhookRepo ports.WebhookRepository,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	timeout time.Duration,
	workers int,
	queueSize int,
	log zerolog.Logger,
) ports.WebhookNotifier {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	n := &webhookNotifier{
		merchantRepo: merchantRepo,
		webhookRepo:  webhookRepo,
		encSvc:       encSvc,
		sigSvc:       sigSvc,
		httpClient:   httpClient,
		timeout:      timeout,
		queue:        make(chan webhookJob, queueSize),
		log:          log,
	}
	n.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go n.worker()
	}
	return n
}

// Enqueue hands a transaction event to the pool. It never blocks the caller:
// when the queue is full the event is dropped and logged.
func (n *webhookNotifier) Enqueue(transaction *domain.Transaction, event domain.WebhookEvent) {
	select {
	case n.queue <- webhookJob{transaction: transaction, event: event}:
	default:
		n.log.Warn().
			Str("transaction_id", transaction.ID.String()).
			Str("event", string(event)).
			Msg("webhook: queue full, dropping event")
	}
}

// Close drains the queue and stops the workers.
func (n *webhookNotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}

func (n *webhookNotifier) worker() {
	defer n.wg.Done()
	for job := range n.queue {
		n.process(job)
	}
}

func (n *webhookNotifier) process(job webhookJob) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	tx := job.transaction

	merchant, err := n.merchantRepo.GetByID(ctx, tx.MerchantID)
	if err != nil {
		n.log.Error().Err(err).Str("merchant_id", tx.MerchantID.String()).Msg("webhook: failed to fetch merchant")
		return
	}
	if merchant == nil || merchant.WebhookURL == nil || *merchant.WebhookURL == "" {
		n.log.Debug().Str("merchant_id", tx.MerchantID.String()).Msg("webhook: no webhook URL configured, skipping")
		return
	}

	secretKey, err := n.encSvc.Decrypt(merchant.APISecretEnc)
	if err != nil {
		n.log.Error().Err(err).Str("merchant_id", merchant.ID.String()).Msg("webhook: failed to decrypt merchant secret")
		return
	}

	payload := WebhookPayload{
		Event:         string(job.event),
		TransactionID: tx.ID.String(),
		ReferenceID:   tx.ReferenceID,
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		CustomerEmail: tx.CustomerEmail,
		Metadata:      tx.Metadata,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("transaction_id", tx.ID.String()).Msg("webhook: failed to marshal payload")
		return
	}
	signature := n.sigSvc.Sign(secretKey, string(payloadBytes))

	httpStatus, deliverErr := n.deliver(ctx, *merchant.WebhookURL, payloadBytes, signature, string(job.event))

	logEntry := &domain.WebhookDeliveryLog{
		TransactionID: tx.ID,
		MerchantID:    merchant.ID,
		WebhookURL:    *merchant.WebhookURL,
		Event:         job.event,
		Payload:       string(payloadBytes),
		Status:        domain.WebhookStatusDelivered,
		CreatedAt:     time.Now(),
	}
	if httpStatus != 0 {
		logEntry.HTTPStatus = &httpStatus
	}
	if deliverErr != nil {
		logEntry.Status = domain.WebhookStatusFailed
		msg := deliverErr.Error()
		logEntry.LastError = &msg
		n.log.Warn().Err(deliverErr).
			Str("transaction_id", tx.ID.String()).
			Str("event", string(job.event)).
			Int("status", httpStatus).
			Msg("webhook: delivery failed")
	} else {
		n.log.Info().
			Str("transaction_id", tx.ID.String()).
			Str("event", string(job.event)).
			Int("status", httpStatus).
			Msg("webhook: delivered")
	}

	if err := n.webhookRepo.Create(ctx, logEntry); err != nil {
		n.log.Error().Err(err).Str("transaction_id", tx.ID.String()).Msg("webhook: failed to record delivery log")
	}
}

// deliver performs the single POST. Returns the HTTP status (0 when the
// request never completed) and an error for any non-2xx outcome.
func (n *webhookNotifier) deliver(ctx context.Context, url string, payload []byte, signature, event string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event", event)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

package postgres

import (
	"context"
	"fmt"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"

	"github.com/google/uuid"
)

type webhookRepo struct {
	pool Pool
}

// NewWebhookRepo creates a PostgreSQL-backed WebhookRepository.
func NewWebhookRepo(pool Pool) ports.WebhookRepository {
	return &webhookRepo{pool: pool}
}

func (r *webhookRepo) Create(ctx context.Context, log *domain.WebhookDeliveryLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_delivery_logs
		(id, transaction_id, merchant_id, webhook_url, event, payload, http_status, status, last_error, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		log.ID, log.TransactionID, log.MerchantID, log.WebhookURL,
		string(log.Event), log.Payload, log.HTTPStatus, string(log.Status),
		log.LastError, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook delivery log: %w", err)
	}
	return nil
}

func (r *webhookRepo) ListByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.WebhookDeliveryLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, merchant_id, webhook_url, event, payload,
		http_status, status, last_error, created_at
		 FROM webhook_delivery_logs
		 WHERE transaction_id=$1
		 ORDER BY created_at DESC`, txID)
	if err != nil {
		return nil, fmt.Errorf("list webhook delivery logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WebhookDeliveryLog
	for rows.Next() {
		var l domain.WebhookDeliveryLog
		var event, status string
		if err := rows.Scan(
			&l.ID, &l.TransactionID, &l.MerchantID, &l.WebhookURL, &event,
			&l.Payload, &l.HTTPStatus, &status, &l.LastError, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook delivery log: %w", err)
		}
		l.Event = domain.WebhookEvent(event)
		l.Status = domain.WebhookStatus(status)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"paytrust-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const merchantColumns = `id, user_id, business_name, api_key, api_secret_enc, status, webhook_url, rotation_count, last_rotated_at, created_at, updated_at`

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant. The api_secret_enc column only ever holds
// the encrypted record; callers encrypt before persisting.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (` + merchantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.UserID, m.BusinessName, m.APIKey, m.APISecretEnc,
		m.Status, m.WebhookURL, m.RotationCount, m.LastRotatedAt,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its UUID.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByUserID fetches the merchant owned by a user.
func (r *MerchantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByAPIKey fetches a merchant by its public API key.
func (r *MerchantRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE api_key = $1`
	return r.getOne(ctx, query, apiKey)
}

func (r *MerchantRepo) getOne(ctx context.Context, query string, arg any) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&m.ID, &m.UserID, &m.BusinessName, &m.APIKey, &m.APISecretEnc,
		&m.Status, &m.WebhookURL, &m.RotationCount, &m.LastRotatedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	return m, nil
}

// Update updates a merchant record.
func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants
		SET business_name=$1, api_key=$2, api_secret_enc=$3, status=$4, webhook_url=$5, rotation_count=$6, last_rotated_at=$7, updated_at=NOW()
		WHERE id=$8`
	_, err := r.pool.Exec(ctx, query,
		m.BusinessName, m.APIKey, m.APISecretEnc, m.Status, m.WebhookURL,
		m.RotationCount, m.LastRotatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, merchant_id, reference_id, amount, currency, customer_email, status, signature, metadata, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.MerchantID, t.ReferenceID, t.Amount, t.Currency,
		t.CustomerEmail, t.Status, t.Signature, t.Metadata,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatusIfPending moves a transaction out of pending with a single
// conditional UPDATE. The WHERE clause is the concurrency guard: of N racing
// settles, exactly one sees RowsAffected()==1.
func (r *TransactionRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error) {
	query := `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query, status, id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches transactions with filtering and pagination, newest first.
// All range bounds are inclusive.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
	args = append(args, params.MerchantID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}
	if params.MinAmount != nil {
		conditions = append(conditions, fmt.Sprintf("amount >= $%d", argIdx))
		args = append(args, *params.MinAmount)
		argIdx++
	}
	if params.MaxAmount != nil {
		conditions = append(conditions, fmt.Sprintf("amount <= $%d", argIdx))
		args = append(args, *params.MaxAmount)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Total counts the filtered set, not the page.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Skip)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.MerchantID, &t.ReferenceID, &t.Amount, &t.Currency,
			&t.CustomerEmail, &t.Status, &t.Signature, &t.Metadata,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetSummary retrieves aggregated transaction figures for a merchant.
func (r *TransactionRepo) GetSummary(ctx context.Context, merchantID uuid.UUID) (*ports.TransactionSummary, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COALESCE(SUM(amount), 0) AS total_amount,
		COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0) AS completed_amount
		FROM transactions WHERE merchant_id = $1`

	s := &ports.TransactionSummary{}
	err := r.pool.QueryRow(ctx, query, merchantID).Scan(
		&s.TotalTransactions, &s.CompletedTransactions, &s.FailedTransactions,
		&s.TotalAmount, &s.CompletedAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction summary: %w", err)
	}
	if s.TotalTransactions > 0 {
		s.SuccessRate = float64(s.CompletedTransactions) / float64(s.TotalTransactions) * 100
	}
	return s, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.MerchantID, &t.ReferenceID, &t.Amount, &t.Currency,
		&t.CustomerEmail, &t.Status, &t.Signature, &t.Metadata,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

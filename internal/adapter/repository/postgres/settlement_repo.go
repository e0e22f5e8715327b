package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

const settlementColumns = `id, initiator_id, source_account_id, dest_account_id, amount, currency, dest_currency, applied_rate, settled_amount, status, kind, idempotency_key, failure_reason, journal_id, created_at, updated_at`

const pgErrUniqueViolation = "23505"

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// Create persists a settlement.
func (r *SettlementRepository) Create(ctx context.Context, settlement *domain.Settlement) error {
	return r.create(ctx, r.pool, settlement)
}

// CreateTx persists a settlement within a transaction.
func (r *SettlementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	return r.create(ctx, pgxTxFrom(tx), settlement)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *SettlementRepository) create(ctx context.Context, db execer, settlement *domain.Settlement) error {
	_, err := db.Exec(ctx, `
		INSERT INTO settlements (`+settlementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14, $15, $16)`,
		settlement.ID,
		settlement.InitiatorID,
		settlement.SourceAccountID,
		settlement.DestAccountID,
		decimalToNumeric(settlement.Amount),
		settlement.Currency,
		settlement.DestCurrency,
		decimalToNumeric(settlement.AppliedRate),
		decimalToNumeric(settlement.SettledAmount),
		string(settlement.Status),
		string(settlement.Kind),
		settlement.IdempotencyKey,
		settlement.FailureReason,
		settlement.JournalID,
		timeToPgTimestamptz(settlement.CreatedAt),
		timeToPgTimestamptz(settlement.UpdatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateIdempotency
		}

		return err
	}

	return nil
}

// GetByID retrieves a settlement by ID.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE id = $1`, id)

	return scanSettlement(row)
}

// GetByIdempotencyKey retrieves a settlement by its idempotency key.
func (r *SettlementRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Settlement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE idempotency_key = $1`, key)

	return scanSettlement(row)
}

// MarkCompletedIfPending performs the atomic pending -> completed transition.
// The WHERE status clause is the only concurrency gate: it reports false when
// another caller already finalized the settlement.
func (r *SettlementRepository) MarkCompletedIfPending(ctx context.Context, tx usecase.Transaction, id, journalID string, appliedRate, settledAmount decimal.Decimal, updatedAt time.Time) (bool, error) {
	pgxTx := pgxTxFrom(tx)

	tag, err := pgxTx.Exec(ctx, `
		UPDATE settlements
		SET status = 'completed', journal_id = $2, applied_rate = $3, settled_amount = $4, updated_at = $5
		WHERE id = $1 AND status = 'pending'`,
		id, journalID, decimalToNumeric(appliedRate), decimalToNumeric(settledAmount), timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// MarkFailedIfPending performs the atomic pending -> failed transition,
// recording the failure reason.
func (r *SettlementRepository) MarkFailedIfPending(ctx context.Context, tx usecase.Transaction, id, reason string, updatedAt time.Time) (bool, error) {
	pgxTx := pgxTxFrom(tx)

	tag, err := pgxTx.Exec(ctx, `
		UPDATE settlements
		SET status = 'failed', failure_reason = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'`,
		id, reason, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// ListByAccount lists settlements touching an account, newest first.
func (r *SettlementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Settlement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE source_account_id = $1 OR dest_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []*domain.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}

	return settlements, rows.Err()
}

func scanSettlement(row pgx.Row) (*domain.Settlement, error) {
	var (
		settlement            domain.Settlement
		amount, rate, settled pgtype.Numeric
		status, kind          string
		idempotencyKey        pgtype.Text
		failureReason         pgtype.Text
		journalID             pgtype.Text
		createdAt, updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&settlement.ID,
		&settlement.InitiatorID,
		&settlement.SourceAccountID,
		&settlement.DestAccountID,
		&amount,
		&settlement.Currency,
		&settlement.DestCurrency,
		&rate,
		&settled,
		&status,
		&kind,
		&idempotencyKey,
		&failureReason,
		&journalID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	settlement.Amount = numericToDecimal(amount)
	settlement.AppliedRate = numericToDecimal(rate)
	settlement.SettledAmount = numericToDecimal(settled)
	settlement.Status = domain.SettlementStatus(status)
	settlement.Kind = domain.SettlementKind(kind)
	settlement.IdempotencyKey = idempotencyKey.String
	settlement.FailureReason = failureReason.String
	settlement.JournalID = journalID.String
	settlement.CreatedAt = createdAt.Time
	settlement.UpdatedAt = updatedAt.Time

	return &settlement, nil
}

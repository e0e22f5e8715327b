package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

const interEntityColumns = `id, principal_id, from_entity_id, to_entity_id, amount, currency, kind, status, created_at, cleared_at`

// InterEntityRepository implements usecase.InterEntityRepository.
type InterEntityRepository struct {
	pool *pgxpool.Pool
}

// NewInterEntityRepository creates a new InterEntityRepository.
func NewInterEntityRepository(pool *pgxpool.Pool) *InterEntityRepository {
	return &InterEntityRepository{pool: pool}
}

// Create persists an inter-entity transfer.
func (r *InterEntityRepository) Create(ctx context.Context, transfer *domain.InterEntityTransfer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inter_entity_transfers (`+interEntityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		transfer.ID,
		transfer.PrincipalID,
		transfer.FromEntityID,
		transfer.ToEntityID,
		decimalToNumeric(transfer.Amount),
		transfer.Currency,
		transfer.Kind,
		string(transfer.Status),
		timeToPgTimestamptz(transfer.CreatedAt),
		timePtrToPgTimestamptz(transfer.ClearedAt),
	)

	return err
}

// GetByID retrieves a transfer by ID.
func (r *InterEntityRepository) GetByID(ctx context.Context, id string) (*domain.InterEntityTransfer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+interEntityColumns+`
		FROM inter_entity_transfers
		WHERE id = $1`, id)

	return scanInterEntityTransfer(row)
}

// ListPendingBetween retrieves pending transfers between the pair in either
// direction.
func (r *InterEntityRepository) ListPendingBetween(ctx context.Context, entityA, entityB string) ([]*domain.InterEntityTransfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+interEntityColumns+`
		FROM inter_entity_transfers
		WHERE status = 'pending'
		  AND ((from_entity_id = $1 AND to_entity_id = $2)
		    OR (from_entity_id = $2 AND to_entity_id = $1))
		ORDER BY created_at, id`,
		entityA, entityB,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*domain.InterEntityTransfer
	for rows.Next() {
		transfer, err := scanInterEntityTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

// MarkClearedBetween clears all pending transfers between the pair in one
// batch and returns the number of rows cleared.
func (r *InterEntityRepository) MarkClearedBetween(ctx context.Context, tx usecase.Transaction, entityA, entityB string, clearedAt time.Time) (int64, error) {
	pgxTx := pgxTxFrom(tx)

	tag, err := pgxTx.Exec(ctx, `
		UPDATE inter_entity_transfers
		SET status = 'cleared', cleared_at = $3
		WHERE status = 'pending'
		  AND ((from_entity_id = $1 AND to_entity_id = $2)
		    OR (from_entity_id = $2 AND to_entity_id = $1))`,
		entityA, entityB, timeToPgTimestamptz(clearedAt),
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListEdges returns the distinct directed transfer edges of a principal's
// fund-flow graph.
func (r *InterEntityRepository) ListEdges(ctx context.Context, principalID string) ([]domain.EntityEdge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT from_entity_id, to_entity_id
		FROM inter_entity_transfers
		WHERE principal_id = $1`,
		principalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.EntityEdge
	for rows.Next() {
		var edge domain.EntityEdge
		if err := rows.Scan(&edge.FromEntityID, &edge.ToEntityID); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

func scanInterEntityTransfer(row pgx.Row) (*domain.InterEntityTransfer, error) {
	var (
		transfer  domain.InterEntityTransfer
		amount    pgtype.Numeric
		status    string
		createdAt pgtype.Timestamptz
		clearedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.PrincipalID,
		&transfer.FromEntityID,
		&transfer.ToEntityID,
		&amount,
		&transfer.Currency,
		&transfer.Kind,
		&status,
		&createdAt,
		&clearedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPersistence
		}

		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.Status = domain.InterEntityStatus(status)
	transfer.CreatedAt = createdAt.Time
	transfer.ClearedAt = pgTimestamptzToTimePtr(clearedAt)

	return &transfer, nil
}

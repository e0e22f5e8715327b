package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/ledger/internal/domain"
)

const valuationColumns = `id, account_id, local_balance, book_value, market_value, realized_gain, unrealized_gain, rate, reason, valued_at`

// ValuationRepository implements usecase.ValuationRepository. Snapshots are
// append-only history.
type ValuationRepository struct {
	pool *pgxpool.Pool
}

// NewValuationRepository creates a new ValuationRepository.
func NewValuationRepository(pool *pgxpool.Pool) *ValuationRepository {
	return &ValuationRepository{pool: pool}
}

// Create persists a valuation snapshot.
func (r *ValuationRepository) Create(ctx context.Context, snapshot *domain.ValuationSnapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO valuation_snapshots (`+valuationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		snapshot.ID,
		snapshot.AccountID,
		decimalToNumeric(snapshot.LocalBalance),
		decimalToNumeric(snapshot.BookValue),
		decimalToNumeric(snapshot.MarketValue),
		decimalToNumeric(snapshot.RealizedGain),
		decimalToNumeric(snapshot.UnrealizedGain),
		decimalToNumeric(snapshot.Rate),
		string(snapshot.Reason),
		timeToPgTimestamptz(snapshot.ValuedAt),
	)

	return err
}

// ListByAccount retrieves snapshots for an account, newest first.
func (r *ValuationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ValuationSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+valuationColumns+`
		FROM valuation_snapshots
		WHERE account_id = $1
		ORDER BY valued_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.ValuationSnapshot
	for rows.Next() {
		var (
			snapshot                   domain.ValuationSnapshot
			local, book, market        pgtype.Numeric
			realized, unrealized, rate pgtype.Numeric
			reason                     string
			valuedAt                   pgtype.Timestamptz
		)

		err := rows.Scan(
			&snapshot.ID,
			&snapshot.AccountID,
			&local,
			&book,
			&market,
			&realized,
			&unrealized,
			&rate,
			&reason,
			&valuedAt,
		)
		if err != nil {
			return nil, err
		}

		snapshot.LocalBalance = numericToDecimal(local)
		snapshot.BookValue = numericToDecimal(book)
		snapshot.MarketValue = numericToDecimal(market)
		snapshot.RealizedGain = numericToDecimal(realized)
		snapshot.UnrealizedGain = numericToDecimal(unrealized)
		snapshot.Rate = numericToDecimal(rate)
		snapshot.Reason = domain.ValuationReason(reason)
		snapshot.ValuedAt = valuedAt.Time

		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, rows.Err()
}

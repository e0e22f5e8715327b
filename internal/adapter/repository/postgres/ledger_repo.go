package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency returns the signed base-currency sum over all entries and
// the total entry count. A healthy ledger sums to zero.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, int64, error) {
	var (
		baseSum pgtype.Numeric
		count   int64
	)

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(base_amount), 0), COUNT(*)
		FROM entries`).Scan(&baseSum, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return numericToDecimal(baseSum), count, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

const entryColumns = `id, account_id, journal_id, transaction_ref, currency, debit, credit, fx_rate, base_amount, account_previous_balance, account_current_balance, account_version, created_at`

// EntryRepository implements usecase.EntryRepository. Entries are
// append-only: there is no update or delete path.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts an entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := pgxTxFrom(tx)

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID,
		entry.AccountID,
		entry.JournalID,
		entry.TransactionRef,
		entry.Currency,
		decimalToNumeric(entry.Debit),
		decimalToNumeric(entry.Credit),
		decimalToNumeric(entry.FxRate),
		decimalToNumeric(entry.BaseAmount),
		decimalToNumeric(entry.AccountPreviousBalance),
		decimalToNumeric(entry.AccountCurrentBalance),
		entry.AccountVersion,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByJournal retrieves all entries of a journal.
func (r *EntryRepository) GetByJournal(ctx context.Context, journalID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE journal_id = $1
		ORDER BY id`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByAccount retrieves entries for an account, newest first.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ReplayByAccount retrieves every entry for the account up to and including
// asOf, in chronological order. Replay order is the posting order, which is
// what balance reconstruction depends on.
func (r *EntryRepository) ReplayByAccount(ctx context.Context, accountID string, asOf time.Time) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE account_id = $1 AND created_at <= $2
		ORDER BY created_at, id`,
		accountID, timeToPgTimestamptz(asOf),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for rows.Next() {
		var (
			entry                        domain.Entry
			debit, credit, fxRate        pgtype.Numeric
			baseAmount, prevBal, currBal pgtype.Numeric
			createdAt                    pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.JournalID,
			&entry.TransactionRef,
			&entry.Currency,
			&debit,
			&credit,
			&fxRate,
			&baseAmount,
			&prevBal,
			&currBal,
			&entry.AccountVersion,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Debit = numericToDecimal(debit)
		entry.Credit = numericToDecimal(credit)
		entry.FxRate = numericToDecimal(fxRate)
		entry.BaseAmount = numericToDecimal(baseAmount)
		entry.AccountPreviousBalance = numericToDecimal(prevBal)
		entry.AccountCurrentBalance = numericToDecimal(currBal)
		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

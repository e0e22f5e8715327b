package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvault/ledger/internal/usecase"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool. All
// multi-statement ledger operations run through transactions it opens.
type TxManager struct {
	pool pgxPool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a transaction at the pool's default isolation level.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	inner, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: inner}, nil
}

// Tx adapts a pgx.Tx to usecase.Transaction.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// PgxTx exposes the wrapped pgx.Tx for repository queries.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

// pgxTxFrom unwraps the concrete transaction handed back by Begin.
// Repositories in this package only accept transactions they issued.
func pgxTxFrom(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

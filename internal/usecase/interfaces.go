package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts FOR UPDATE; callers pass IDs in
	// sorted order to keep lock acquisition deadlock-free.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	// List returns accounts for an owner. An empty ownerID lists all
	// accounts.
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for journal entries. Entries are
// append-only; the interface has no update or delete.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByJournal(ctx context.Context, journalID string) ([]*domain.Entry, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// ReplayByAccount returns every entry for the account in chronological
	// order, up to and including asOf.
	ReplayByAccount(ctx context.Context, accountID string, asOf time.Time) ([]*domain.Entry, error)
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *domain.Settlement) error
	CreateTx(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Settlement, error)
	// MarkCompletedIfPending performs the atomic conditional transition
	// pending -> completed. It reports false when the settlement was no
	// longer pending, which callers treat as "already handled".
	MarkCompletedIfPending(ctx context.Context, tx Transaction, id, journalID string, appliedRate, settledAmount decimal.Decimal, updatedAt time.Time) (bool, error)
	// MarkFailedIfPending performs the atomic conditional transition
	// pending -> failed, recording the failure reason.
	MarkFailedIfPending(ctx context.Context, tx Transaction, id, reason string, updatedAt time.Time) (bool, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Settlement, error)
}

// EntityRepository defines data access for entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]*domain.Entity, error)
}

// InterEntityRepository defines data access for inter-entity obligations.
type InterEntityRepository interface {
	Create(ctx context.Context, transfer *domain.InterEntityTransfer) error
	GetByID(ctx context.Context, id string) (*domain.InterEntityTransfer, error)
	ListPendingBetween(ctx context.Context, entityA, entityB string) ([]*domain.InterEntityTransfer, error)
	// MarkClearedBetween clears every pending transfer between the pair in
	// one batch and returns the number of rows cleared.
	MarkClearedBetween(ctx context.Context, tx Transaction, entityA, entityB string, clearedAt time.Time) (int64, error)
	// ListEdges returns the distinct directed transfer edges for a
	// principal's entity graph.
	ListEdges(ctx context.Context, principalID string) ([]domain.EntityEdge, error)
}

// ValuationRepository defines data access for valuation snapshots.
// Snapshots are append-only history.
type ValuationRepository interface {
	Create(ctx context.Context, snapshot *domain.ValuationSnapshot) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ValuationSnapshot, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// CheckConsistency returns the signed base-currency sum over all
	// entries and the total entry count.
	CheckConsistency(ctx context.Context) (baseSum decimal.Decimal, entryCount int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// FxRateProvider supplies point-in-time quotes for currency pairs. The feed
// behind it is refreshed on a fixed interval by an external scheduler.
type FxRateProvider interface {
	GetRate(ctx context.Context, base, quote string) (*domain.FxRate, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

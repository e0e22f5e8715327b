package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBaseCurrency is the reporting currency used when none is configured
	DefaultBaseCurrency = "USD"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// ReplayPageSize is the page size used when replaying entries
	ReplayPageSize = 1000
)

package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountInactive       = errors.New("account is deactivated")
	ErrInsufficientLiquidity = errors.New("insufficient available liquidity")
	ErrNotOwner              = errors.New("account is not owned by requester")

	// Journal errors
	ErrSameAccount      = errors.New("cannot post debit and credit to the same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidEntry     = errors.New("entry must carry exactly one of debit or credit")
	ErrUnbalancedEntry  = errors.New("journal entries do not balance in base currency")
	ErrJournalNotFound  = errors.New("journal not found")
	ErrCurrencyMismatch = errors.New("entry currency does not match account currency")

	// Settlement errors
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrSettlementNotPending = errors.New("settlement is not pending")
	ErrDuplicateIdempotency = errors.New("idempotency key already used")
	ErrSameOwner            = errors.New("p2p transfer requires distinct owners")
	ErrPersistence          = errors.New("unit of work could not commit")

	// FX errors
	ErrRateUnavailable = errors.New("exchange rate unavailable for pair")

	// Inter-entity errors
	ErrEntityNotFound    = errors.New("entity not found")
	ErrSameEntity        = errors.New("cannot record transfer to the same entity")
	ErrPrincipalMismatch = errors.New("entities belong to different principals")

	// Valuation errors
	ErrNoPosition = errors.New("account holds no position to dispose")

	// Infrastructure errors
	ErrCacheMiss = errors.New("cache miss")
)

package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// JournalUseCase posts balanced double-entry pairs. It is the only component
// that mutates account balances; settlement paths reuse its leg-posting
// primitive inside their own transactions.
type JournalUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	entryRepo    EntryRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	rates        FxRateProvider
	idGen        IDGenerator
	baseCurrency string
	metrics      *metrics.Metrics
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rates FxRateProvider,
	idGen IDGenerator,
	baseCurrency string,
	metrics *metrics.Metrics,
) *JournalUseCase {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}

	return &JournalUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		entryRepo:    entryRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		rates:        rates,
		idGen:        idGen,
		baseCurrency: baseCurrency,
		metrics:      metrics,
	}
}

// Leg is one side of a journal posting, denominated in the account's native
// currency.
type Leg struct {
	AccountID string
	Side      domain.BalanceSide
	Amount    decimal.Decimal
	Currency  string
}

// CreateJournalEntryInput represents input for posting a symmetric
// debit/credit pair.
type CreateJournalEntryInput struct {
	ActorID         string
	DebitAccountID  string
	CreditAccountID string
	Amount          decimal.Decimal
	Currency        string
	TransactionRef  string
	Metadata        map[string]any
}

// CreateJournalEntry posts a balanced debit/credit pair in its own unit of
// work. Either both entries persist or neither does.
func (uc *JournalUseCase) CreateJournalEntry(ctx context.Context, input CreateJournalEntryInput) (*domain.Journal, error) {
	if input.DebitAccountID == input.CreditAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	legs := []Leg{
		{AccountID: input.DebitAccountID, Side: domain.BalanceSideDebit, Amount: input.Amount, Currency: input.Currency},
		{AccountID: input.CreditAccountID, Side: domain.BalanceSideCredit, Amount: input.Amount, Currency: input.Currency},
	}

	journal, err := uc.PostJournal(txCtx, tx, legs, input.TransactionRef, input.Metadata)
	if err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorOrSystem(input.ActorID),
			Action:       string(domain.AuditActionJournalPost),
			ResourceType: domain.AggregateTypeJournal,
			ResourceID:   journal.ID,
			Metadata:     domain.MarshalState(journal.Entries),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.metrics != nil {
		uc.metrics.JournalsPosted.Inc()
	}

	return journal, nil
}

// PostJournal posts a set of legs as one journal inside the caller's
// transaction. All legs are validated before any entry is written; the
// liquidity gate checks each account's aggregate net debit across the whole
// journal against its available balance.
func (uc *JournalUseCase) PostJournal(ctx context.Context, tx Transaction, legs []Leg, ref string, metadata map[string]any) (*domain.Journal, error) {
	if len(legs) < 2 {
		return nil, domain.ErrInvalidEntry
	}

	for _, leg := range legs {
		if leg.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
	}

	// Lock accounts in sorted ID order (deadlock prevention).
	accountIDs := uc.collectUniqueAccountIDs(legs)
	if len(accountIDs) < 2 {
		return nil, domain.ErrSameAccount
	}
	sort.Strings(accountIDs)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(accountIDs) {
		return nil, domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	now := time.Now().UTC()
	journal := &domain.Journal{
		ID:        uc.idGen.Generate(),
		Metadata:  metadata,
		CreatedAt: now,
	}

	// Validate every leg before mutating anything. Liquidity is gated on the
	// aggregate net debit per account, not per leg, so repeated debit legs
	// against one account cannot overdraw it.
	netDebits := make(map[string]decimal.Decimal, len(accountIDs))
	for _, leg := range legs {
		account := accountMap[leg.AccountID]

		if leg.Currency != account.Currency {
			return nil, domain.ErrCurrencyMismatch
		}

		if !account.Active {
			return nil, domain.ErrAccountInactive
		}

		if leg.Side == domain.BalanceSideDebit {
			netDebits[leg.AccountID] = netDebits[leg.AccountID].Add(leg.Amount)
		} else {
			netDebits[leg.AccountID] = netDebits[leg.AccountID].Sub(leg.Amount)
		}
	}

	for _, id := range accountIDs {
		net := netDebits[id]
		if !net.IsPositive() {
			continue
		}
		if err := accountMap[id].ValidateDebit(net); err != nil {
			return nil, err
		}
	}

	// Build entries with base-currency equivalents fixed at post time.
	entries := make([]*domain.Entry, 0, len(legs))
	for _, leg := range legs {
		rate, err := uc.rateToBase(ctx, leg.Currency)
		if err != nil {
			return nil, err
		}

		entry := &domain.Entry{
			ID:             uc.idGen.Generate(),
			AccountID:      leg.AccountID,
			JournalID:      journal.ID,
			TransactionRef: ref,
			Currency:       leg.Currency,
			FxRate:         rate,
			CreatedAt:      now,
		}

		if leg.Side == domain.BalanceSideDebit {
			entry.Debit = leg.Amount
			entry.BaseAmount = leg.Amount.Mul(rate)
		} else {
			entry.Credit = leg.Amount
			entry.BaseAmount = leg.Amount.Mul(rate).Neg()
		}

		if err := entry.Validate(); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	journal.Entries = entries
	if !journal.Balanced() {
		return nil, domain.ErrUnbalancedEntry
	}

	// Persist entries and roll balances forward.
	for _, entry := range entries {
		account := accountMap[entry.AccountID]

		var newBalance decimal.Decimal
		if entry.Debit.IsPositive() {
			newBalance = account.ApplyDebit(entry.Debit)
		} else {
			newBalance = account.ApplyCredit(entry.Credit)
		}

		entry.AccountPreviousBalance = account.Balance
		entry.AccountCurrentBalance = newBalance
		entry.AccountVersion = account.Version + 1

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return nil, err
		}

		account.Balance = newBalance
		account.Version++
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   journal.ID,
			AggregateType: domain.AggregateTypeJournal,
			EventType:     domain.EventTypeJournalPosted,
			Payload: map[string]any{
				"journal_id": journal.ID,
				"ref":        ref,
				"legs":       len(legs),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return journal, nil
}

// GetJournal retrieves all entries of a journal.
func (uc *JournalUseCase) GetJournal(ctx context.Context, journalID string) (*domain.Journal, error) {
	entries, err := uc.entryRepo.GetByJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, domain.ErrJournalNotFound
	}

	return &domain.Journal{
		ID:        journalID,
		Entries:   entries,
		CreatedAt: entries[0].CreatedAt,
	}, nil
}

// ListEntriesByAccountInput represents input for listing entries.
type ListEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntriesByAccount lists entries for an account.
func (uc *JournalUseCase) ListEntriesByAccount(ctx context.Context, input ListEntriesByAccountInput) ([]*domain.Entry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.entryRepo.GetByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// rateToBase returns the mid rate from currency to the base currency. Base
// currency itself converts at 1.
func (uc *JournalUseCase) rateToBase(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == uc.baseCurrency {
		return decimal.NewFromInt(1), nil
	}

	rate, err := uc.rates.GetRate(ctx, currency, uc.baseCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Mid, nil
}

func (uc *JournalUseCase) collectUniqueAccountIDs(legs []Leg) []string {
	seen := make(map[string]bool)

	var ids []string
	for _, leg := range legs {
		if !seen[leg.AccountID] {
			seen[leg.AccountID] = true
			ids = append(ids, leg.AccountID)
		}
	}

	return ids
}

func actorOrSystem(actorID string) string {
	if actorID == "" {
		return "system"
	}

	return actorID
}

package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// ValuationUseCase reconstructs balances and cost basis from entry replay and
// computes realized/unrealized gains using the average-cost method. Average
// cost is a deliberate approximation for currency sub-ledgers; lot-specific
// tax accounting lives in a separate subsystem.
type ValuationUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	entryRepo     EntryRepository
	valuationRepo ValuationRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	rates         FxRateProvider
	idGen         IDGenerator
	baseCurrency  string
	metrics       *metrics.Metrics
}

// NewValuationUseCase creates a new ValuationUseCase.
func NewValuationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	valuationRepo ValuationRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rates FxRateProvider,
	idGen IDGenerator,
	baseCurrency string,
	metrics *metrics.Metrics,
) *ValuationUseCase {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}

	return &ValuationUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		entryRepo:     entryRepo,
		valuationRepo: valuationRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		rates:         rates,
		idGen:         idGen,
		baseCurrency:  baseCurrency,
		metrics:       metrics,
	}
}

// GetReconstructedBalance replays every entry for the account in
// chronological order and derives the local balance, base-currency cost
// basis, current market value and unrealized gain. The replayed balance must
// match the account's materialized running balance (round-trip law); the
// returned position carries both so callers can verify.
//
// The replay reads an "as of now" snapshot and tolerates entries posted after
// it started: eventually consistent, not linearizable.
func (uc *ValuationUseCase) GetReconstructedBalance(ctx context.Context, accountID string) (*domain.Position, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	entries, err := uc.entryRepo.ReplayByAccount(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	local := decimal.Zero
	basis := decimal.Zero
	for _, e := range entries {
		amount := e.LocalAmount()
		local = local.Add(amount)
		basis = basis.Add(amount.Mul(e.FxRate))
	}

	rate, err := uc.rateToBase(ctx, account.Currency)
	if err != nil {
		return nil, err
	}

	market := local.Mul(rate)

	avgCost := decimal.Zero
	if !local.IsZero() {
		avgCost = basis.Div(local)
	}

	return &domain.Position{
		AccountID:           accountID,
		Currency:            account.Currency,
		LocalBalance:        local,
		CostBasis:           basis,
		MarketValue:         market,
		UnrealizedGain:      market.Sub(basis),
		AverageCostRate:     avgCost,
		MaterializedBalance: account.Balance,
		AsOf:                now,
	}, nil
}

// CalculateRealizedGainInput represents input for a disposal calculation.
type CalculateRealizedGainInput struct {
	ActorID        string
	AccountID      string
	AmountDisposed decimal.Decimal
	DisposalRate   decimal.Decimal
}

// RealizedGainResult carries the realized gain and the snapshot persisted at
// disposal time.
type RealizedGainResult struct {
	RealizedGain    decimal.Decimal
	AverageCostRate decimal.Decimal
	Snapshot        *domain.ValuationSnapshot
}

// CalculateRealizedGain computes the gain realized by disposing
// amountDisposed at disposalRate, using the blended average cost across the
// whole position, and persists a ValuationSnapshot recording book and market
// value at disposal time.
func (uc *ValuationUseCase) CalculateRealizedGain(ctx context.Context, input CalculateRealizedGainInput) (*RealizedGainResult, error) {
	if input.AmountDisposed.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	pos, err := uc.GetReconstructedBalance(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if pos.LocalBalance.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrNoPosition
	}

	if input.AmountDisposed.GreaterThan(pos.LocalBalance) {
		return nil, domain.ErrNoPosition
	}

	realized := input.AmountDisposed.Mul(input.DisposalRate.Sub(pos.AverageCostRate))

	snapshot := &domain.ValuationSnapshot{
		ID:             uc.idGen.Generate(),
		AccountID:      input.AccountID,
		LocalBalance:   pos.LocalBalance,
		BookValue:      pos.CostBasis,
		MarketValue:    pos.MarketValue,
		RealizedGain:   realized,
		UnrealizedGain: pos.UnrealizedGain,
		Rate:           input.DisposalRate,
		Reason:         domain.ValuationReasonDisposal,
		ValuedAt:       pos.AsOf,
	}

	if err := uc.valuationRepo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorOrSystem(input.ActorID),
			Action:       string(domain.AuditActionValuationSnapshot),
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   input.AccountID,
			Metadata:     domain.MarshalState(snapshot),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		})
	}

	if uc.metrics != nil {
		uc.metrics.ValuationSnapshots.Inc()
	}

	return &RealizedGainResult{
		RealizedGain:    realized,
		AverageCostRate: pos.AverageCostRate,
		Snapshot:        snapshot,
	}, nil
}

// RevalueAccount recomputes the account's unrealized gain against the latest
// rate and appends a revaluation snapshot. Revaluation runs independently per
// account and may race with new postings; the replay tolerates that.
func (uc *ValuationUseCase) RevalueAccount(ctx context.Context, accountID string) (*domain.ValuationSnapshot, error) {
	pos, err := uc.GetReconstructedBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	rate, err := uc.rateToBase(ctx, pos.Currency)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.ValuationSnapshot{
		ID:             uc.idGen.Generate(),
		AccountID:      accountID,
		LocalBalance:   pos.LocalBalance,
		BookValue:      pos.CostBasis,
		MarketValue:    pos.MarketValue,
		RealizedGain:   decimal.Zero,
		UnrealizedGain: pos.UnrealizedGain,
		Rate:           rate,
		Reason:         domain.ValuationReasonRevaluation,
		ValuedAt:       pos.AsOf,
	}

	if err := uc.valuationRepo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	uc.emitRevalued(ctx, snapshot)

	if uc.metrics != nil {
		uc.metrics.ValuationSnapshots.Inc()
	}

	return snapshot, nil
}

// emitRevalued writes the valuation.revalued outbox event best-effort in its
// own transaction; revaluation never fails on the event write.
func (uc *ValuationUseCase) emitRevalued(ctx context.Context, snapshot *domain.ValuationSnapshot) {
	if uc.outboxRepo == nil || uc.txManager == nil {
		return
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   snapshot.AccountID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountRevalued,
		Payload: map[string]any{
			"account_id":      snapshot.AccountID,
			"snapshot_id":     snapshot.ID,
			"market_value":    snapshot.MarketValue.String(),
			"unrealized_gain": snapshot.UnrealizedGain.String(),
			"rate":            snapshot.Rate.String(),
		},
		CreatedAt: snapshot.ValuedAt,
		Published: false,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return
	}

	_ = tx.Commit(ctx)
}

// ListSnapshotsInput represents input for listing valuation history.
type ListSnapshotsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListSnapshots lists valuation snapshots for an account, newest first.
func (uc *ValuationUseCase) ListSnapshots(ctx context.Context, input ListSnapshotsInput) ([]*domain.ValuationSnapshot, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.valuationRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

func (uc *ValuationUseCase) rateToBase(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == uc.baseCurrency {
		return decimal.NewFromInt(1), nil
	}

	rate, err := uc.rates.GetRate(ctx, currency, uc.baseCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Mid, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// SettlementUseCase coordinates vault-to-vault, peer-to-peer and
// cross-currency settlements. Every path funnels through the journal
// engine's leg-posting primitive so the liquidity gate is applied uniformly.
type SettlementUseCase struct {
	txManager      TransactionManager
	settlementRepo SettlementRepository
	accountRepo    AccountRepository
	journalUC      *JournalUseCase
	rates          FxRateProvider
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	retrier        Retrier
	metrics        *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	settlementRepo SettlementRepository,
	accountRepo AccountRepository,
	journalUC *JournalUseCase,
	rates FxRateProvider,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		accountRepo:    accountRepo,
		journalUC:      journalUC,
		rates:          rates,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		retrier:        retrier,
		metrics:        metrics,
	}
}

// CreateSettlementRequestInput represents input for the request phase of a
// two-phase settlement.
type CreateSettlementRequestInput struct {
	InitiatorID     string
	SourceAccountID string
	DestAccountID   string
	Amount          decimal.Decimal
	Currency        string
	IdempotencyKey  string
}

// CreateSettlementRequest persists a pending settlement with no balance side
// effects. Execution happens in a later, separately-gated phase.
func (uc *SettlementUseCase) CreateSettlementRequest(ctx context.Context, input CreateSettlementRequestInput) (*domain.Settlement, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if input.SourceAccountID == input.DestAccountID {
		return nil, domain.ErrSameAccount
	}

	if input.IdempotencyKey != "" {
		existing, err := uc.settlementRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil && existing != nil {
			return existing, nil
		}
	}

	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}

	if !source.OwnedBy(input.InitiatorID) {
		return nil, domain.ErrNotOwner
	}

	if source.Currency != input.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	dest, err := uc.accountRepo.GetByID(ctx, input.DestAccountID)
	if err != nil {
		return nil, err
	}

	// Two-phase settlements move a single currency. Cross-currency flows go
	// through SettleInternally, which applies a rate; accepting a mismatched
	// destination here would only ever execute into a failed state.
	if dest.Currency != source.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:              uc.idGen.Generate(),
		InitiatorID:     input.InitiatorID,
		SourceAccountID: input.SourceAccountID,
		DestAccountID:   input.DestAccountID,
		Amount:          input.Amount,
		Currency:        input.Currency,
		DestCurrency:    dest.Currency,
		Status:          domain.SettlementStatusPending,
		Kind:            domain.SettlementKindInternal,
		IdempotencyKey:  input.IdempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := settlement.Validate(); err != nil {
		return nil, err
	}

	if err := uc.settlementRepo.Create(ctx, settlement); err != nil {
		// A concurrent request with the same key can land between the
		// existence check and the insert. The winner's settlement is the
		// idempotent outcome, so return it instead of an error.
		if errors.Is(err, domain.ErrDuplicateIdempotency) && input.IdempotencyKey != "" {
			existing, readErr := uc.settlementRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
			if readErr == nil && existing != nil {
				return existing, nil
			}
			return nil, err
		}

		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.audit(ctx, input.InitiatorID, domain.AuditActionSettlementRequest, settlement.ID, domain.MarshalState(settlement), nil)

	if uc.metrics != nil {
		uc.metrics.SettlementsRequested.Inc()
	}

	return settlement, nil
}

// ExecuteSettlement executes a pending settlement. The only gate against
// concurrent execution is the conditional update-where-status-is-pending: a
// caller whose update affects zero rows observes the terminal settlement and
// returns it unchanged, a no-op rather than an error. Any failure inside the
// unit of work aborts all mutations and records the settlement as failed with
// the captured reason.
func (uc *SettlementUseCase) ExecuteSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	settlement, err := uc.settlementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if settlement.Terminal() {
		// Already handled, safe to return the original outcome.
		return settlement, nil
	}

	var result *domain.Settlement

	attempt := func() error {
		var attemptErr error
		result, attemptErr = uc.executeOnce(ctx, settlement)
		return attemptErr
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}

	if err != nil {
		uc.markFailed(ctx, settlement, err)
		return nil, err
	}

	return result, nil
}

func (uc *SettlementUseCase) executeOnce(ctx context.Context, settlement *domain.Settlement) (*domain.Settlement, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	legs := []Leg{
		{AccountID: settlement.SourceAccountID, Side: domain.BalanceSideDebit, Amount: settlement.Amount, Currency: settlement.Currency},
		{AccountID: settlement.DestAccountID, Side: domain.BalanceSideCredit, Amount: settlement.Amount, Currency: settlement.Currency},
	}

	journal, err := uc.journalUC.PostJournal(txCtx, tx, legs, "settlement:"+settlement.ID, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	claimed, err := uc.settlementRepo.MarkCompletedIfPending(txCtx, tx, settlement.ID, journal.ID, decimal.Zero, settlement.Amount, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if !claimed {
		// Lost the race: another caller finalized the settlement. Roll back
		// our journal and report the terminal state as a no-op.
		_ = tx.Rollback(txCtx)

		current, err := uc.settlementRepo.GetByID(ctx, settlement.ID)
		if err != nil {
			return nil, err
		}

		return current, nil
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   settlement.ID,
			AggregateType: domain.AggregateTypeSettlement,
			EventType:     domain.EventTypeSettlementCompleted,
			Payload: map[string]any{
				"settlement_id": settlement.ID,
				"journal_id":    journal.ID,
				"amount":        settlement.Amount.String(),
				"currency":      settlement.Currency,
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	settlement.Status = domain.SettlementStatusCompleted
	settlement.JournalID = journal.ID
	settlement.SettledAmount = settlement.Amount
	settlement.UpdatedAt = now

	uc.audit(ctx, settlement.InitiatorID, domain.AuditActionSettlementExecute, settlement.ID, domain.MarshalState(settlement), nil)

	if uc.metrics != nil {
		uc.metrics.SettlementsCompleted.Inc()
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}

	return settlement, nil
}

// ProcessP2PTransferInput represents input for a direct one-phase transfer
// between distinct owners.
type ProcessP2PTransferInput struct {
	SenderID          string
	ReceiverID        string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Currency          string
}

// ProcessP2PTransfer moves funds between vaults of two distinct owners in a
// single unit of work, with no persisted pending phase. The completed
// settlement row is written in the same transaction for audit.
func (uc *SettlementUseCase) ProcessP2PTransfer(ctx context.Context, input ProcessP2PTransferInput) (*domain.Settlement, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.SenderID == input.ReceiverID {
		return nil, domain.ErrSameOwner
	}

	sender, err := uc.accountRepo.GetByID(ctx, input.SenderAccountID)
	if err != nil {
		return nil, err
	}

	if !sender.OwnedBy(input.SenderID) {
		return nil, domain.ErrNotOwner
	}

	receiver, err := uc.accountRepo.GetByID(ctx, input.ReceiverAccountID)
	if err != nil {
		return nil, err
	}

	if !receiver.OwnedBy(input.ReceiverID) {
		return nil, domain.ErrNotOwner
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	legs := []Leg{
		{AccountID: input.SenderAccountID, Side: domain.BalanceSideDebit, Amount: input.Amount, Currency: input.Currency},
		{AccountID: input.ReceiverAccountID, Side: domain.BalanceSideCredit, Amount: input.Amount, Currency: input.Currency},
	}

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:              uc.idGen.Generate(),
		InitiatorID:     input.SenderID,
		SourceAccountID: input.SenderAccountID,
		DestAccountID:   input.ReceiverAccountID,
		Amount:          input.Amount,
		Currency:        input.Currency,
		DestCurrency:    receiver.Currency,
		SettledAmount:   input.Amount,
		Status:          domain.SettlementStatusCompleted,
		Kind:            domain.SettlementKindP2P,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	journal, err := uc.journalUC.PostJournal(txCtx, tx, legs, "p2p:"+settlement.ID, nil)
	if err != nil {
		return nil, err
	}

	settlement.JournalID = journal.ID

	if err := uc.settlementRepo.CreateTx(txCtx, tx, settlement); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.audit(ctx, input.SenderID, domain.AuditActionSettlementP2P, settlement.ID, domain.MarshalState(settlement), nil)

	if uc.metrics != nil {
		uc.metrics.SettlementsCompleted.Inc()
	}

	return settlement, nil
}

// SettleInternallyInput represents input for a cross-currency settlement
// between two vaults of the same owner.
type SettleInternallyInput struct {
	InitiatorID     string
	SourceAccountID string
	DestAccountID   string
	FromCurrency    string
	ToCurrency      string
	Amount          decimal.Decimal
}

// SettleInternallyResult carries the applied rate and the spread-savings
// metric alongside the settlement.
type SettleInternallyResult struct {
	Settlement    *domain.Settlement
	AppliedRate   decimal.Decimal
	SettledAmount decimal.Decimal
	SpreadSavings decimal.Decimal
}

// SettleInternally converts between two currency vaults at the current mid
// rate, avoiding the market bid/ask spread an external venue would charge.
// The applied rate is recorded immutably on the settlement and its entries.
func (uc *SettlementUseCase) SettleInternally(ctx context.Context, input SettleInternallyInput) (*SettleInternallyResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.SourceAccountID == input.DestAccountID {
		return nil, domain.ErrSameAccount
	}

	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}

	if !source.OwnedBy(input.InitiatorID) {
		return nil, domain.ErrNotOwner
	}

	if source.Currency != input.FromCurrency {
		return nil, domain.ErrCurrencyMismatch
	}

	dest, err := uc.accountRepo.GetByID(ctx, input.DestAccountID)
	if err != nil {
		return nil, err
	}

	if dest.Currency != input.ToCurrency {
		return nil, domain.ErrCurrencyMismatch
	}

	rate, err := uc.rates.GetRate(ctx, input.FromCurrency, input.ToCurrency)
	if err != nil {
		return nil, err
	}

	settledAmount := input.Amount.Mul(rate.Mid)
	savings := rate.SpreadSavings(input.Amount)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:              uc.idGen.Generate(),
		InitiatorID:     input.InitiatorID,
		SourceAccountID: input.SourceAccountID,
		DestAccountID:   input.DestAccountID,
		Amount:          input.Amount,
		Currency:        input.FromCurrency,
		DestCurrency:    input.ToCurrency,
		AppliedRate:     rate.Mid,
		SettledAmount:   settledAmount,
		Status:          domain.SettlementStatusCompleted,
		Kind:            domain.SettlementKindFX,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	legs := []Leg{
		{AccountID: input.SourceAccountID, Side: domain.BalanceSideDebit, Amount: input.Amount, Currency: input.FromCurrency},
		{AccountID: input.DestAccountID, Side: domain.BalanceSideCredit, Amount: settledAmount, Currency: input.ToCurrency},
	}

	journal, err := uc.journalUC.PostJournal(txCtx, tx, legs, "fx:"+settlement.ID, map[string]any{
		"applied_rate":   rate.Mid.String(),
		"spread_savings": savings.String(),
	})
	if err != nil {
		return nil, err
	}

	settlement.JournalID = journal.ID

	if err := uc.settlementRepo.CreateTx(txCtx, tx, settlement); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   settlement.ID,
			AggregateType: domain.AggregateTypeSettlement,
			EventType:     domain.EventTypeSettlementCompleted,
			Payload: map[string]any{
				"settlement_id":  settlement.ID,
				"journal_id":     journal.ID,
				"amount":         input.Amount.String(),
				"currency":       input.FromCurrency,
				"applied_rate":   rate.Mid.String(),
				"settled_amount": settledAmount.String(),
				"spread_savings": savings.String(),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.audit(ctx, input.InitiatorID, domain.AuditActionSettlementFX, settlement.ID, domain.JSON{
		"applied_rate":   rate.Mid.String(),
		"settled_amount": settledAmount.String(),
		"spread_savings": savings.String(),
	}, nil)

	if uc.metrics != nil {
		uc.metrics.SettlementsCompleted.Inc()
		uc.metrics.SpreadSavings.Add(savingsFloat(savings))
	}

	return &SettleInternallyResult{
		Settlement:    settlement,
		AppliedRate:   rate.Mid,
		SettledAmount: settledAmount,
		SpreadSavings: savings,
	}, nil
}

// GetSettlement retrieves a settlement by ID.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.settlementRepo.GetByID(ctx, id)
}

// ListSettlementsByAccountInput represents input for listing settlements.
type ListSettlementsByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListSettlementsByAccount lists settlements touching an account.
func (uc *SettlementUseCase) ListSettlementsByAccount(ctx context.Context, input ListSettlementsByAccountInput) ([]*domain.Settlement, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.settlementRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// markFailed records the terminal failed state in its own transaction so the
// failure survives the rolled-back execution attempt. Failed settlements are
// kept permanently for audit.
func (uc *SettlementUseCase) markFailed(ctx context.Context, settlement *domain.Settlement, cause error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	marked, err := uc.settlementRepo.MarkFailedIfPending(ctx, tx, settlement.ID, cause.Error(), now)
	if err != nil || !marked {
		return
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   settlement.ID,
			AggregateType: domain.AggregateTypeSettlement,
			EventType:     domain.EventTypeSettlementFailed,
			Payload: map[string]any{
				"settlement_id": settlement.ID,
				"reason":        cause.Error(),
			},
			CreatedAt: now,
			Published: false,
		}
		_ = uc.outboxRepo.Create(ctx, tx, event)
	}

	if err := tx.Commit(ctx); err != nil {
		return
	}

	uc.audit(ctx, settlement.InitiatorID, domain.AuditActionSettlementExecute, settlement.ID, nil, cause)

	if uc.metrics != nil {
		uc.metrics.SettlementsFailed.Inc()
	}
}

// audit records an audit row outside the business transaction; correctness
// never depends on the audit write.
func (uc *SettlementUseCase) audit(ctx context.Context, actorID string, action domain.AuditAction, resourceID string, metadata domain.JSON, cause error) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorOrSystem(actorID),
		Action:       string(action),
		ResourceType: domain.AggregateTypeSettlement,
		ResourceID:   resourceID,
		Metadata:     metadata,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if cause != nil {
		log.Status = string(domain.AuditStatusFailure)
		log.ErrorMessage = cause.Error()
	}

	_ = uc.auditRepo.Create(ctx, log)
}

func savingsFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

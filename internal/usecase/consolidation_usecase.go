package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// CircularFundingPolicy controls which cycles in the fund-flow graph are
// reported. Treasury pooling entities legitimately route funds back to their
// origin, so they can be excluded from the scan.
type CircularFundingPolicy struct {
	MaxHops          int
	ExcludeTreasury  bool
	ExcludedEntities []string
}

// DefaultCircularFundingPolicy is used when the caller supplies no policy.
var DefaultCircularFundingPolicy = CircularFundingPolicy{
	MaxHops:         5,
	ExcludeTreasury: true,
}

// ConsolidationUseCase aggregates Due-To/Due-From obligations across entity
// pairs, clears matched positions, and scans the fund-flow graph for
// circular-funding anomalies.
type ConsolidationUseCase struct {
	txManager    TransactionManager
	entityRepo   EntityRepository
	interRepo    InterEntityRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	rates        FxRateProvider
	idGen        IDGenerator
	baseCurrency string
	tolerance    decimal.Decimal
	policy       CircularFundingPolicy
	metrics      *metrics.Metrics
}

// NewConsolidationUseCase creates a new ConsolidationUseCase.
func NewConsolidationUseCase(
	txManager TransactionManager,
	entityRepo EntityRepository,
	interRepo InterEntityRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rates FxRateProvider,
	idGen IDGenerator,
	baseCurrency string,
	policy CircularFundingPolicy,
	metrics *metrics.Metrics,
) *ConsolidationUseCase {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}

	if policy.MaxHops <= 0 {
		policy.MaxHops = DefaultCircularFundingPolicy.MaxHops
	}

	return &ConsolidationUseCase{
		txManager:    txManager,
		entityRepo:   entityRepo,
		interRepo:    interRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		rates:        rates,
		idGen:        idGen,
		baseCurrency: baseCurrency,
		tolerance:    domain.BalanceTolerance,
		policy:       policy,
		metrics:      metrics,
	}
}

// RecordTransferInput represents input for recording an inter-entity
// obligation.
type RecordTransferInput struct {
	ActorID      string
	FromEntityID string
	ToEntityID   string
	Amount       decimal.Decimal
	Currency     string
	Kind         string
}

// RecordTransfer persists a pending obligation between two entities of the
// same principal. No balance moves: the claim is settled by a later clearing
// cycle.
func (uc *ConsolidationUseCase) RecordTransfer(ctx context.Context, input RecordTransferInput) (*domain.InterEntityTransfer, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	from, err := uc.entityRepo.GetByID(ctx, input.FromEntityID)
	if err != nil {
		return nil, err
	}

	to, err := uc.entityRepo.GetByID(ctx, input.ToEntityID)
	if err != nil {
		return nil, err
	}

	if !domain.SamePrincipal(from, to) {
		return nil, domain.ErrPrincipalMismatch
	}

	transfer := &domain.InterEntityTransfer{
		ID:           uc.idGen.Generate(),
		PrincipalID:  from.PrincipalID,
		FromEntityID: input.FromEntityID,
		ToEntityID:   input.ToEntityID,
		Amount:       input.Amount,
		Currency:     input.Currency,
		Kind:         input.Kind,
		Status:       domain.InterEntityStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.interRepo.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorOrSystem(input.ActorID),
			Action:       string(domain.AuditActionNettingRecord),
			ResourceType: domain.AggregateTypeEntityPair,
			ResourceID:   transfer.ID,
			Metadata:     domain.MarshalState(transfer),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		})
	}

	if uc.metrics != nil {
		uc.metrics.NettingTransfers.Inc()
	}

	return transfer, nil
}

// GetConsolidatedBalance nets all pending transfers between the pair,
// converting each to base currency at query time. Positive net means entityA
// is net-receivable from entityB.
func (uc *ConsolidationUseCase) GetConsolidatedBalance(ctx context.Context, entityA, entityB string) (*domain.ConsolidatedBalance, error) {
	pending, err := uc.interRepo.ListPendingBetween(ctx, entityA, entityB)
	if err != nil {
		return nil, err
	}

	outbound := lo.Filter(pending, func(t *domain.InterEntityTransfer, _ int) bool {
		return t.FromEntityID == entityA
	})
	inbound := lo.Filter(pending, func(t *domain.InterEntityTransfer, _ int) bool {
		return t.FromEntityID == entityB
	})

	sumBase := func(transfers []*domain.InterEntityTransfer) (decimal.Decimal, error) {
		sum := decimal.Zero
		for _, t := range transfers {
			base, err := uc.toBase(ctx, t.Amount, t.Currency)
			if err != nil {
				return decimal.Zero, err
			}
			sum = sum.Add(base)
		}
		return sum, nil
	}

	claims, err := sumBase(outbound)
	if err != nil {
		return nil, err
	}

	obligations, err := sumBase(inbound)
	if err != nil {
		return nil, err
	}

	net := claims.Sub(obligations)

	direction := domain.NetDirectionSettled
	switch {
	case net.GreaterThan(uc.tolerance):
		direction = domain.NetDirectionReceivable
	case net.LessThan(uc.tolerance.Neg()):
		direction = domain.NetDirectionPayable
	}

	return &domain.ConsolidatedBalance{
		EntityA:      entityA,
		EntityB:      entityB,
		NetBase:      net,
		Direction:    direction,
		PendingCount: len(pending),
		ComputedAt:   time.Now().UTC(),
	}, nil
}

// ClearingResult is the outcome of a clearing cycle over one entity pair.
type ClearingResult struct {
	Balance      *domain.ConsolidatedBalance
	Cleared      bool
	ClearedCount int64
}

// RunClearingCycle clears all pending transfers between the pair in one
// batch when the pair's net base-currency balance is within tolerance. This
// is the periodic reconciliation rule; recording a transfer never clears
// anything by itself.
func (uc *ConsolidationUseCase) RunClearingCycle(ctx context.Context, entityA, entityB string) (*ClearingResult, error) {
	balance, err := uc.GetConsolidatedBalance(ctx, entityA, entityB)
	if err != nil {
		return nil, err
	}

	if balance.PendingCount == 0 || balance.NetBase.Abs().GreaterThan(uc.tolerance) {
		return &ClearingResult{Balance: balance, Cleared: false}, nil
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	count, err := uc.interRepo.MarkClearedBetween(txCtx, tx, entityA, entityB, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   entityA + ":" + entityB,
			AggregateType: domain.AggregateTypeEntityPair,
			EventType:     domain.EventTypeNettingCleared,
			Payload: map[string]any{
				"entity_a":      entityA,
				"entity_b":      entityB,
				"cleared_count": count,
				"net_base":      balance.NetBase.String(),
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

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      "system",
			Action:       string(domain.AuditActionNettingClear),
			ResourceType: domain.AggregateTypeEntityPair,
			ResourceID:   entityA + ":" + entityB,
			Metadata:     domain.JSON{"cleared_count": count},
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
	}

	if uc.metrics != nil {
		uc.metrics.NettingCleared.Add(float64(count))
	}

	return &ClearingResult{Balance: balance, Cleared: true, ClearedCount: count}, nil
}

// DetectCircularFunding runs a breadth-first traversal of the principal's
// directed fund-flow graph starting from originEntity. A path returning to
// the origin within maxHops is reported for manual review; nothing is
// remediated automatically. Pass maxHops <= 0 to use the configured policy
// default.
func (uc *ConsolidationUseCase) DetectCircularFunding(ctx context.Context, originEntityID string, maxHops int) (*domain.CircularFundingReport, error) {
	if maxHops <= 0 {
		maxHops = uc.policy.MaxHops
	}

	origin, err := uc.entityRepo.GetByID(ctx, originEntityID)
	if err != nil {
		return nil, err
	}

	edges, err := uc.interRepo.ListEdges(ctx, origin.PrincipalID)
	if err != nil {
		return nil, err
	}

	excluded, err := uc.excludedEntities(ctx, origin)
	if err != nil {
		return nil, err
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		if excluded[e.FromEntityID] || excluded[e.ToEntityID] {
			continue
		}
		adjacency[e.FromEntityID] = append(adjacency[e.FromEntityID], e.ToEntityID)
	}

	report := &domain.CircularFundingReport{
		OriginEntityID: originEntityID,
		MaxHops:        maxHops,
		ScannedAt:      time.Now().UTC(),
	}

	// BFS over paths; the first path back to the origin wins (shortest cycle).
	type node struct {
		entity string
		path   []string
	}

	queue := []node{{entity: originEntityID, path: []string{originEntityID}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		hops := len(current.path) - 1
		if hops >= maxHops {
			continue
		}

		for _, next := range adjacency[current.entity] {
			if next == originEntityID {
				report.Detected = true
				report.Path = append(append([]string{}, current.path...), next)
				report.Hops = hops + 1

				uc.reportCycle(ctx, report)

				return report, nil
			}

			// Revisiting an intermediate node cannot shorten a cycle back
			// to the origin.
			if lo.Contains(current.path, next) {
				continue
			}

			path := append(append([]string{}, current.path...), next)
			queue = append(queue, node{entity: next, path: path})
		}
	}

	return report, nil
}

func (uc *ConsolidationUseCase) excludedEntities(ctx context.Context, origin *domain.Entity) (map[string]bool, error) {
	excluded := make(map[string]bool, len(uc.policy.ExcludedEntities))
	for _, id := range uc.policy.ExcludedEntities {
		excluded[id] = true
	}

	if uc.policy.ExcludeTreasury {
		entities, err := uc.entityRepo.ListByPrincipal(ctx, origin.PrincipalID)
		if err != nil {
			return nil, err
		}

		for _, e := range entities {
			if e.Treasury && e.ID != origin.ID {
				excluded[e.ID] = true
			}
		}
	}

	// The origin always participates, regardless of policy.
	delete(excluded, origin.ID)

	return excluded, nil
}

func (uc *ConsolidationUseCase) reportCycle(ctx context.Context, report *domain.CircularFundingReport) {
	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      "system",
			Action:       domain.EventTypeCircularDetected,
			ResourceType: domain.AggregateTypeEntityPair,
			ResourceID:   report.OriginEntityID,
			Metadata:     domain.MarshalState(report),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    report.ScannedAt,
		})
	}

	if uc.metrics != nil {
		uc.metrics.CircularDetections.Inc()
	}
}

func (uc *ConsolidationUseCase) toBase(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == uc.baseCurrency {
		return amount, nil
	}

	rate, err := uc.rates.GetRate(ctx, currency, uc.baseCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate.Mid), nil
}

package dto

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account.
type AccountResponse struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Name              string          `json:"name"`
	Currency          string          `json:"currency"`
	Type              string          `json:"type"`
	NormalSide        string          `json:"normal_side"`
	Balance           decimal.Decimal `json:"balance"`
	EncumberedBalance decimal.Decimal `json:"encumbered_balance"`
	Available         decimal.Decimal `json:"available"`
	Version           int64           `json:"version"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account.
func AccountFromDomain(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:                a.ID,
		OwnerID:           a.OwnerID,
		Name:              a.Name,
		Currency:          a.Currency,
		Type:              string(a.Type),
		NormalSide:        string(a.NormalSide),
		Balance:           a.Balance,
		EncumberedBalance: a.EncumberedBalance,
		Available:         a.Available(),
		Version:           a.Version,
		Active:            a.Active,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts a slice of domain accounts.
func AccountsFromDomain(accounts []*domain.Account) []AccountResponse {
	return lo.Map(accounts, func(a *domain.Account, _ int) AccountResponse {
		return AccountFromDomain(a)
	})
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int64             `json:"total"`
}

// EntryResponse represents a ledger entry.
type EntryResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	JournalID       string          `json:"journal_id"`
	TransactionRef  string          `json:"transaction_ref,omitempty"`
	Currency        string          `json:"currency"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	FxRate          decimal.Decimal `json:"fx_rate"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	AccountVersion  int64           `json:"account_version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry.
func EntryFromDomain(e *domain.Entry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		JournalID:       e.JournalID,
		TransactionRef:  e.TransactionRef,
		Currency:        e.Currency,
		Debit:           e.Debit,
		Credit:          e.Credit,
		FxRate:          e.FxRate,
		BaseAmount:      e.BaseAmount,
		PreviousBalance: e.AccountPreviousBalance,
		CurrentBalance:  e.AccountCurrentBalance,
		AccountVersion:  e.AccountVersion,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts a slice of domain entries.
func EntriesFromDomain(entries []*domain.Entry) []EntryResponse {
	return lo.Map(entries, func(e *domain.Entry, _ int) EntryResponse {
		return EntryFromDomain(e)
	})
}

// ListEntriesResponse wraps a list of entries.
type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int64           `json:"total"`
}

// JournalResponse represents a posted journal.
type JournalResponse struct {
	ID        string          `json:"id"`
	Entries   []EntryResponse `json:"entries"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// JournalFromDomain converts a domain journal.
func JournalFromDomain(j *domain.Journal) JournalResponse {
	return JournalResponse{
		ID:        j.ID,
		Entries:   EntriesFromDomain(j.Entries),
		Metadata:  j.Metadata,
		CreatedAt: j.CreatedAt,
	}
}

// SettlementResponse represents a settlement.
type SettlementResponse struct {
	ID              string          `json:"id"`
	InitiatorID     string          `json:"initiator_id"`
	SourceAccountID string          `json:"source_account_id"`
	DestAccountID   string          `json:"dest_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	DestCurrency    string          `json:"dest_currency,omitempty"`
	AppliedRate     decimal.Decimal `json:"applied_rate,omitempty"`
	SettledAmount   decimal.Decimal `json:"settled_amount,omitempty"`
	Status          string          `json:"status"`
	Kind            string          `json:"kind"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	JournalID       string          `json:"journal_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SettlementFromDomain converts a domain settlement.
func SettlementFromDomain(s *domain.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:              s.ID,
		InitiatorID:     s.InitiatorID,
		SourceAccountID: s.SourceAccountID,
		DestAccountID:   s.DestAccountID,
		Amount:          s.Amount,
		Currency:        s.Currency,
		DestCurrency:    s.DestCurrency,
		AppliedRate:     s.AppliedRate,
		SettledAmount:   s.SettledAmount,
		Status:          string(s.Status),
		Kind:            string(s.Kind),
		IdempotencyKey:  s.IdempotencyKey,
		FailureReason:   s.FailureReason,
		JournalID:       s.JournalID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// SettlementsFromDomain converts a slice of domain settlements.
func SettlementsFromDomain(settlements []*domain.Settlement) []SettlementResponse {
	return lo.Map(settlements, func(s *domain.Settlement, _ int) SettlementResponse {
		return SettlementFromDomain(s)
	})
}

// ListSettlementsResponse wraps a list of settlements.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	Total       int64                `json:"total"`
}

// InternalSettlementResponse carries the settlement plus conversion details.
type InternalSettlementResponse struct {
	Settlement    SettlementResponse `json:"settlement"`
	AppliedRate   decimal.Decimal    `json:"applied_rate"`
	SettledAmount decimal.Decimal    `json:"settled_amount"`
	SpreadSavings decimal.Decimal    `json:"spread_savings"`
}

// InternalSettlementFromResult converts a use case result.
func InternalSettlementFromResult(r *usecase.SettleInternallyResult) InternalSettlementResponse {
	return InternalSettlementResponse{
		Settlement:    SettlementFromDomain(r.Settlement),
		AppliedRate:   r.AppliedRate,
		SettledAmount: r.SettledAmount,
		SpreadSavings: r.SpreadSavings,
	}
}

// PositionResponse represents a reconstructed account position.
type PositionResponse struct {
	AccountID           string          `json:"account_id"`
	Currency            string          `json:"currency"`
	LocalBalance        decimal.Decimal `json:"local_balance"`
	CostBasis           decimal.Decimal `json:"cost_basis"`
	MarketValue         decimal.Decimal `json:"market_value"`
	UnrealizedGain      decimal.Decimal `json:"unrealized_gain"`
	AverageCostRate     decimal.Decimal `json:"average_cost_rate"`
	MaterializedBalance decimal.Decimal `json:"materialized_balance"`
	Consistent          bool            `json:"consistent"`
	AsOf                time.Time       `json:"as_of"`
}

// PositionFromDomain converts a domain position.
func PositionFromDomain(p *domain.Position) PositionResponse {
	return PositionResponse{
		AccountID:           p.AccountID,
		Currency:            p.Currency,
		LocalBalance:        p.LocalBalance,
		CostBasis:           p.CostBasis,
		MarketValue:         p.MarketValue,
		UnrealizedGain:      p.UnrealizedGain,
		AverageCostRate:     p.AverageCostRate,
		MaterializedBalance: p.MaterializedBalance,
		Consistent:          p.Consistent(),
		AsOf:                p.AsOf,
	}
}

// SnapshotResponse represents a valuation snapshot.
type SnapshotResponse struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	LocalBalance   decimal.Decimal `json:"local_balance"`
	BookValue      decimal.Decimal `json:"book_value"`
	MarketValue    decimal.Decimal `json:"market_value"`
	RealizedGain   decimal.Decimal `json:"realized_gain"`
	UnrealizedGain decimal.Decimal `json:"unrealized_gain"`
	Rate           decimal.Decimal `json:"rate"`
	Reason         string          `json:"reason"`
	ValuedAt       time.Time       `json:"valued_at"`
}

// SnapshotFromDomain converts a domain valuation snapshot.
func SnapshotFromDomain(s *domain.ValuationSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:             s.ID,
		AccountID:      s.AccountID,
		LocalBalance:   s.LocalBalance,
		BookValue:      s.BookValue,
		MarketValue:    s.MarketValue,
		RealizedGain:   s.RealizedGain,
		UnrealizedGain: s.UnrealizedGain,
		Rate:           s.Rate,
		Reason:         string(s.Reason),
		ValuedAt:       s.ValuedAt,
	}
}

// SnapshotsFromDomain converts a slice of domain snapshots.
func SnapshotsFromDomain(snapshots []*domain.ValuationSnapshot) []SnapshotResponse {
	return lo.Map(snapshots, func(s *domain.ValuationSnapshot, _ int) SnapshotResponse {
		return SnapshotFromDomain(s)
	})
}

// RealizedGainResponse carries the realized gain and the disposal snapshot.
type RealizedGainResponse struct {
	RealizedGain    decimal.Decimal  `json:"realized_gain"`
	AverageCostRate decimal.Decimal  `json:"average_cost_rate"`
	Snapshot        SnapshotResponse `json:"snapshot"`
}

// InterEntityTransferResponse represents an inter-entity transfer.
type InterEntityTransferResponse struct {
	ID           string          `json:"id"`
	PrincipalID  string          `json:"principal_id"`
	FromEntityID string          `json:"from_entity_id"`
	ToEntityID   string          `json:"to_entity_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Kind         string          `json:"kind,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ClearedAt    *time.Time      `json:"cleared_at,omitempty"`
}

// InterEntityTransferFromDomain converts a domain transfer.
func InterEntityTransferFromDomain(t *domain.InterEntityTransfer) InterEntityTransferResponse {
	return InterEntityTransferResponse{
		ID:           t.ID,
		PrincipalID:  t.PrincipalID,
		FromEntityID: t.FromEntityID,
		ToEntityID:   t.ToEntityID,
		Amount:       t.Amount,
		Currency:     t.Currency,
		Kind:         t.Kind,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		ClearedAt:    t.ClearedAt,
	}
}

// ConsolidatedBalanceResponse represents a netted position between entities.
type ConsolidatedBalanceResponse struct {
	EntityA      string          `json:"entity_a"`
	EntityB      string          `json:"entity_b"`
	NetBase      decimal.Decimal `json:"net_base"`
	Direction    string          `json:"direction"`
	PendingCount int             `json:"pending_count"`
	ComputedAt   time.Time       `json:"computed_at"`
}

// ConsolidatedBalanceFromDomain converts a domain consolidated balance.
func ConsolidatedBalanceFromDomain(b *domain.ConsolidatedBalance) ConsolidatedBalanceResponse {
	return ConsolidatedBalanceResponse{
		EntityA:      b.EntityA,
		EntityB:      b.EntityB,
		NetBase:      b.NetBase,
		Direction:    string(b.Direction),
		PendingCount: b.PendingCount,
		ComputedAt:   b.ComputedAt,
	}
}

// ClearingResponse carries the outcome of a clearing cycle.
type ClearingResponse struct {
	Balance      ConsolidatedBalanceResponse `json:"balance"`
	Cleared      bool                        `json:"cleared"`
	ClearedCount int64                       `json:"cleared_count"`
}

// CircularFundingResponse represents a circular funding scan result.
type CircularFundingResponse struct {
	OriginEntityID string    `json:"origin_entity_id"`
	Detected       bool      `json:"detected"`
	Path           []string  `json:"path,omitempty"`
	Hops           int       `json:"hops"`
	MaxHops        int       `json:"max_hops"`
	ScannedAt      time.Time `json:"scanned_at"`
}

// CircularFundingFromDomain converts a domain report.
func CircularFundingFromDomain(r *domain.CircularFundingReport) CircularFundingResponse {
	return CircularFundingResponse{
		OriginEntityID: r.OriginEntityID,
		Detected:       r.Detected,
		Path:           r.Path,
		Hops:           r.Hops,
		MaxHops:        r.MaxHops,
		ScannedAt:      r.ScannedAt,
	}
}

// AccountReconciliationResponse represents a per-account drift check.
type AccountReconciliationResponse struct {
	AccountID           string          `json:"account_id"`
	Currency            string          `json:"currency"`
	MaterializedBalance decimal.Decimal `json:"materialized_balance"`
	ReplayedBalance     decimal.Decimal `json:"replayed_balance"`
	Drift               decimal.Decimal `json:"drift"`
	Consistent          bool            `json:"consistent"`
	CheckedAt           time.Time       `json:"checked_at"`
}

// AccountReconciliationFromUseCase converts a use case reconciliation.
func AccountReconciliationFromUseCase(r *usecase.AccountReconciliation) AccountReconciliationResponse {
	return AccountReconciliationResponse{
		AccountID:           r.AccountID,
		Currency:            r.Currency,
		MaterializedBalance: r.MaterializedBalance,
		ReplayedBalance:     r.ReplayedBalance,
		Drift:               r.Drift,
		Consistent:          r.Consistent,
		CheckedAt:           r.CheckedAt,
	}
}

// LedgerConsistencyResponse represents the global zero-sum check.
type LedgerConsistencyResponse struct {
	BaseSum    decimal.Decimal `json:"base_sum"`
	EntryCount int64           `json:"entry_count"`
	Consistent bool            `json:"consistent"`
	CheckedAt  time.Time       `json:"checked_at"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

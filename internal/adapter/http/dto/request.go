package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	Currency   string `json:"currency"`
	Type       string `json:"type,omitempty"`
	NormalSide string `json:"normal_side,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:    r.OwnerID,
		Name:       r.Name,
		Currency:   r.Currency,
		Type:       domain.AccountType(r.Type),
		NormalSide: domain.BalanceSide(r.NormalSide),
	}
}

// CreateJournalEntryRequest represents a balanced debit/credit posting.
type CreateJournalEntryRequest struct {
	ActorID         string          `json:"actor_id"`
	DebitAccountID  string          `json:"debit_account_id"`
	CreditAccountID string          `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionRef  string          `json:"transaction_ref,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJournalEntryRequest) ToUseCaseInput() usecase.CreateJournalEntryInput {
	return usecase.CreateJournalEntryInput{
		ActorID:         r.ActorID,
		DebitAccountID:  r.DebitAccountID,
		CreditAccountID: r.CreditAccountID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		TransactionRef:  r.TransactionRef,
		Metadata:        r.Metadata,
	}
}

// CreateSettlementRequest represents a request for a pending settlement.
type CreateSettlementRequest struct {
	InitiatorID     string          `json:"initiator_id"`
	SourceAccountID string          `json:"source_account_id"`
	DestAccountID   string          `json:"dest_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSettlementRequest) ToUseCaseInput() usecase.CreateSettlementRequestInput {
	return usecase.CreateSettlementRequestInput{
		InitiatorID:     r.InitiatorID,
		SourceAccountID: r.SourceAccountID,
		DestAccountID:   r.DestAccountID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		IdempotencyKey:  r.IdempotencyKey,
	}
}

// P2PTransferRequest represents a transfer between two owners.
type P2PTransferRequest struct {
	SenderID          string          `json:"sender_id"`
	ReceiverID        string          `json:"receiver_id"`
	SenderAccountID   string          `json:"sender_account_id"`
	ReceiverAccountID string          `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *P2PTransferRequest) ToUseCaseInput() usecase.ProcessP2PTransferInput {
	return usecase.ProcessP2PTransferInput{
		SenderID:          r.SenderID,
		ReceiverID:        r.ReceiverID,
		SenderAccountID:   r.SenderAccountID,
		ReceiverAccountID: r.ReceiverAccountID,
		Amount:            r.Amount,
		Currency:          r.Currency,
	}
}

// InternalSettlementRequest represents a cross-currency internal settlement.
type InternalSettlementRequest struct {
	InitiatorID     string          `json:"initiator_id"`
	SourceAccountID string          `json:"source_account_id"`
	DestAccountID   string          `json:"dest_account_id"`
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	Amount          decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *InternalSettlementRequest) ToUseCaseInput() usecase.SettleInternallyInput {
	return usecase.SettleInternallyInput{
		InitiatorID:     r.InitiatorID,
		SourceAccountID: r.SourceAccountID,
		DestAccountID:   r.DestAccountID,
		FromCurrency:    r.FromCurrency,
		ToCurrency:      r.ToCurrency,
		Amount:          r.Amount,
	}
}

// RecordInterEntityTransferRequest represents an inter-entity obligation.
type RecordInterEntityTransferRequest struct {
	ActorID      string          `json:"actor_id"`
	FromEntityID string          `json:"from_entity_id"`
	ToEntityID   string          `json:"to_entity_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Kind         string          `json:"kind,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordInterEntityTransferRequest) ToUseCaseInput() usecase.RecordTransferInput {
	return usecase.RecordTransferInput{
		ActorID:      r.ActorID,
		FromEntityID: r.FromEntityID,
		ToEntityID:   r.ToEntityID,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Kind:         r.Kind,
	}
}

// RealizedGainRequest represents a disposal against an account's position.
type RealizedGainRequest struct {
	ActorID        string          `json:"actor_id"`
	AmountDisposed decimal.Decimal `json:"amount_disposed"`
	DisposalRate   decimal.Decimal `json:"disposal_rate"`
}

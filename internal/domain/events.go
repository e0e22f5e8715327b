package domain

import "time"

// Event types
const (
	EventTypeJournalPosted       = "journal.posted"
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypeSettlementFailed    = "settlement.failed"
	EventTypeAccountCreated      = "account.created"
	EventTypeNettingCleared      = "netting.cleared"
	EventTypeCircularDetected    = "netting.circular_detected"
	EventTypeAccountRevalued     = "valuation.revalued"
)

// Aggregate types
const (
	AggregateTypeJournal    = "journal"
	AggregateTypeSettlement = "settlement"
	AggregateTypeAccount    = "account"
	AggregateTypeEntityPair = "entity_pair"
)

// OutboxEvent represents a domain event to be published by a separate
// consumer. Business correctness never depends on delivery.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// Event payloads are free-form maps on OutboxEvent; consumers key off
// EventType and the aggregate fields.

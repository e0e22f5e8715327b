package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActiveFunc         func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, bypassing Create hooks.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		acc, ok := m.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = active
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if ownerID == "" || acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByJournalFunc    func(ctx context.Context, journalID string) ([]*domain.Entry, error)
	GetByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	ReplayByAccountFunc func(ctx context.Context, accountID string, asOf time.Time) ([]*domain.Entry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) GetByJournal(ctx context.Context, journalID string) ([]*domain.Entry, error) {
	if m.GetByJournalFunc != nil {
		return m.GetByJournalFunc(ctx, journalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.JournalID == journalID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) ReplayByAccount(ctx context.Context, accountID string, asOf time.Time) ([]*domain.Entry, error) {
	if m.ReplayByAccountFunc != nil {
		return m.ReplayByAccountFunc(ctx, accountID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID == accountID && !e.CreatedAt.After(asOf) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Entries returns a copy of all recorded entries.
func (m *MockEntryRepository) Entries() []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mu          sync.RWMutex
	settlements map[string]*domain.Settlement

	CreateFunc                 func(ctx context.Context, settlement *domain.Settlement) error
	CreateTxFunc               func(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Settlement, error)
	GetByIdempotencyKeyFunc    func(ctx context.Context, key string) (*domain.Settlement, error)
	MarkCompletedIfPendingFunc func(ctx context.Context, tx usecase.Transaction, id, journalID string, appliedRate, settledAmount decimal.Decimal, updatedAt time.Time) (bool, error)
	MarkFailedIfPendingFunc    func(ctx context.Context, tx usecase.Transaction, id, reason string, updatedAt time.Time) (bool, error)
	ListByAccountFunc          func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Settlement, error)
}

func NewMockSettlementRepository() *MockSettlementRepository {
	return &MockSettlementRepository{
		settlements: make(map[string]*domain.Settlement),
	}
}

func (m *MockSettlementRepository) Create(ctx context.Context, settlement *domain.Settlement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, settlement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[settlement.ID] = settlement
	return nil
}

func (m *MockSettlementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, settlement)
	}
	return m.Create(ctx, settlement)
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settlements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *MockSettlementRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Settlement, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.settlements {
		if s.IdempotencyKey == key {
			return s, nil
		}
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *MockSettlementRepository) MarkCompletedIfPending(ctx context.Context, tx usecase.Transaction, id, journalID string, appliedRate, settledAmount decimal.Decimal, updatedAt time.Time) (bool, error) {
	if m.MarkCompletedIfPendingFunc != nil {
		return m.MarkCompletedIfPendingFunc(ctx, tx, id, journalID, appliedRate, settledAmount, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settlements[id]
	if !ok {
		return false, domain.ErrSettlementNotFound
	}
	if s.Status != domain.SettlementStatusPending {
		return false, nil
	}
	s.Status = domain.SettlementStatusCompleted
	s.JournalID = journalID
	s.AppliedRate = appliedRate
	s.SettledAmount = settledAmount
	s.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockSettlementRepository) MarkFailedIfPending(ctx context.Context, tx usecase.Transaction, id, reason string, updatedAt time.Time) (bool, error) {
	if m.MarkFailedIfPendingFunc != nil {
		return m.MarkFailedIfPendingFunc(ctx, tx, id, reason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settlements[id]
	if !ok {
		return false, domain.ErrSettlementNotFound
	}
	if s.Status != domain.SettlementStatusPending {
		return false, nil
	}
	s.Status = domain.SettlementStatusFailed
	s.FailureReason = reason
	s.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockSettlementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Settlement, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var settlements []*domain.Settlement
	for _, s := range m.settlements {
		if s.SourceAccountID == accountID || s.DestAccountID == accountID {
			settlements = append(settlements, s)
		}
	}
	return settlements, nil
}

// MockEntityRepository is a mock implementation of EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity

	CreateFunc          func(ctx context.Context, entity *domain.Entity) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Entity, error)
	ListByPrincipalFunc func(ctx context.Context, principalID string) ([]*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[string]*domain.Entity),
	}
}

func (m *MockEntityRepository) Seed(entities ...*domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		m.entities[e.ID] = e
	}
}

func (m *MockEntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.ID] = entity
	return nil
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockEntityRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*domain.Entity, error) {
	if m.ListByPrincipalFunc != nil {
		return m.ListByPrincipalFunc(ctx, principalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entities []*domain.Entity
	for _, e := range m.entities {
		if e.PrincipalID == principalID {
			entities = append(entities, e)
		}
	}
	return entities, nil
}

// MockInterEntityRepository is a mock implementation of InterEntityRepository.
type MockInterEntityRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.InterEntityTransfer

	CreateFunc             func(ctx context.Context, transfer *domain.InterEntityTransfer) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.InterEntityTransfer, error)
	ListPendingBetweenFunc func(ctx context.Context, entityA, entityB string) ([]*domain.InterEntityTransfer, error)
	MarkClearedBetweenFunc func(ctx context.Context, tx usecase.Transaction, entityA, entityB string, clearedAt time.Time) (int64, error)
	ListEdgesFunc          func(ctx context.Context, principalID string) ([]domain.EntityEdge, error)
}

func NewMockInterEntityRepository() *MockInterEntityRepository {
	return &MockInterEntityRepository{
		transfers: make(map[string]*domain.InterEntityTransfer),
	}
}

func (m *MockInterEntityRepository) Create(ctx context.Context, transfer *domain.InterEntityTransfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockInterEntityRepository) GetByID(ctx context.Context, id string) (*domain.InterEntityTransfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrPersistence
}

func (m *MockInterEntityRepository) ListPendingBetween(ctx context.Context, entityA, entityB string) ([]*domain.InterEntityTransfer, error) {
	if m.ListPendingBetweenFunc != nil {
		return m.ListPendingBetweenFunc(ctx, entityA, entityB)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.InterEntityTransfer
	for _, t := range m.transfers {
		if t.Status != domain.InterEntityStatusPending {
			continue
		}
		if (t.FromEntityID == entityA && t.ToEntityID == entityB) ||
			(t.FromEntityID == entityB && t.ToEntityID == entityA) {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

func (m *MockInterEntityRepository) MarkClearedBetween(ctx context.Context, tx usecase.Transaction, entityA, entityB string, clearedAt time.Time) (int64, error) {
	if m.MarkClearedBetweenFunc != nil {
		return m.MarkClearedBetweenFunc(ctx, tx, entityA, entityB, clearedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, t := range m.transfers {
		if t.Status != domain.InterEntityStatusPending {
			continue
		}
		if (t.FromEntityID == entityA && t.ToEntityID == entityB) ||
			(t.FromEntityID == entityB && t.ToEntityID == entityA) {
			t.Status = domain.InterEntityStatusCleared
			at := clearedAt
			t.ClearedAt = &at
			count++
		}
	}
	return count, nil
}

func (m *MockInterEntityRepository) ListEdges(ctx context.Context, principalID string) ([]domain.EntityEdge, error) {
	if m.ListEdgesFunc != nil {
		return m.ListEdgesFunc(ctx, principalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[domain.EntityEdge]bool)
	var edges []domain.EntityEdge
	for _, t := range m.transfers {
		if t.PrincipalID != principalID {
			continue
		}
		edge := domain.EntityEdge{FromEntityID: t.FromEntityID, ToEntityID: t.ToEntityID}
		if !seen[edge] {
			seen[edge] = true
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// MockValuationRepository is a mock implementation of ValuationRepository.
type MockValuationRepository struct {
	mu        sync.RWMutex
	snapshots []*domain.ValuationSnapshot

	CreateFunc        func(ctx context.Context, snapshot *domain.ValuationSnapshot) error
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ValuationSnapshot, error)
}

func NewMockValuationRepository() *MockValuationRepository {
	return &MockValuationRepository{}
}

func (m *MockValuationRepository) Create(ctx context.Context, snapshot *domain.ValuationSnapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *MockValuationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ValuationSnapshot, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var snapshots []*domain.ValuationSnapshot
	for _, s := range m.snapshots {
		if s.AccountID == accountID {
			snapshots = append(snapshots, s)
		}
	}
	return snapshots, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// Events returns a copy of all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + itoa(m.counter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MockRetrier is a mock implementation of Retrier that invokes the
// operation once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error

	Calls int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", domain.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{values: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[key]; ok {
		return true, existing, nil
	}
	m.values[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = response
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
)

// AccountUseCase implements account lifecycle operations.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID    string
	Name       string
	Currency   string
	Type       domain.AccountType
	NormalSide domain.BalanceSide
}

// CreateAccount creates a new zero-balance account for the owner.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:                uc.idGen.Generate(),
		OwnerID:           input.OwnerID,
		Name:              input.Name,
		Currency:          input.Currency,
		Type:              input.Type,
		NormalSide:        input.NormalSide,
		Balance:           decimal.Zero,
		EncumberedBalance: decimal.Zero,
		Version:           1,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if account.Type == "" {
		account.Type = domain.AccountTypeAsset
	}

	if account.NormalSide == "" {
		account.NormalSide = account.Type.DefaultNormalSide()
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorOrSystem(input.OwnerID),
			Action:       string(domain.AuditActionAccountCreate),
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   account.ID,
			Metadata:     domain.MarshalState(account),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
	}

	uc.emitCreated(ctx, account)

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// emitCreated writes the account.created outbox event best-effort in its own
// transaction; account creation never fails on the event write.
func (uc *AccountUseCase) emitCreated(ctx context.Context, account *domain.Account) {
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
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": account.ID,
			"owner_id":   account.OwnerID,
			"currency":   account.Currency,
		},
		CreatedAt: account.CreatedAt,
		Published: false,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return
	}

	_ = tx.Commit(ctx)
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountForOwner retrieves an account and verifies ownership.
func (uc *AccountUseCase) GetAccountForOwner(ctx context.Context, id, ownerID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(ownerID) {
		return nil, domain.ErrNotOwner
	}

	return account, nil
}

// ListAccounts lists accounts for an owner with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.List(ctx, ownerID, limit, offset)
}

// DeactivateAccount marks an account inactive. Inactive accounts reject
// further postings but remain queryable.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id, actorID string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.accountRepo.SetActive(ctx, account.ID, false, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorOrSystem(actorID),
			Action:       string(domain.AuditActionAccountDeactivate),
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   account.ID,
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		})
	}

	return nil
}

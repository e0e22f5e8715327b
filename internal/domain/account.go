package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account for reporting purposes.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// DefaultNormalSide returns the conventional normal side for the account type.
func (t AccountType) DefaultNormalSide() BalanceSide {
	switch t {
	case AccountTypeLiability, AccountTypeRevenue:
		return BalanceSideCredit
	default:
		return BalanceSideDebit
	}
}

// BalanceSide is the normal balance side of an account.
type BalanceSide string

const (
	BalanceSideDebit  BalanceSide = "debit"
	BalanceSideCredit BalanceSide = "credit"
)

// Account represents a ledger account (a currency vault) that can hold a balance.
// Accounts are created at entity onboarding and are never deleted, only deactivated.
type Account struct {
	ID                string
	OwnerID           string
	Name              string
	Currency          string
	Type              AccountType
	NormalSide        BalanceSide
	Balance           decimal.Decimal
	EncumberedBalance decimal.Decimal
	Version           int64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Available returns the balance available for settlement, excluding
// encumbered funds.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.EncumberedBalance)
}

// ValidateDebit checks whether the account has enough available liquidity to
// be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}
	if a.Available().LessThan(amount) {
		return ErrInsufficientLiquidity
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// OwnedBy reports whether ownerID owns the account.
func (a *Account) OwnedBy(ownerID string) bool {
	return a.OwnerID == ownerID
}

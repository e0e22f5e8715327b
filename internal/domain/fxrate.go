package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is a point-in-time quote for a currency pair. Once a rate is
// recorded on an entry it is an immutable historical fact and is never
// recomputed retroactively.
type FxRate struct {
	Base  string
	Quote string
	Mid   decimal.Decimal
	Bid   decimal.Decimal
	Ask   decimal.Decimal
	AsOf  time.Time
}

// Spread returns the absolute bid/ask spread.
func (r *FxRate) Spread() decimal.Decimal {
	return r.Ask.Sub(r.Bid)
}

// SpreadSavings approximates the market spread avoided by settling amount
// internally at the mid rate instead of crossing an external venue.
func (r *FxRate) SpreadSavings(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Spread()).Div(decimal.NewFromInt(2))
}

// Inverse returns the quote for the reversed pair.
func (r *FxRate) Inverse() *FxRate {
	one := decimal.NewFromInt(1)

	inv := &FxRate{
		Base:  r.Quote,
		Quote: r.Base,
		AsOf:  r.AsOf,
	}

	if !r.Mid.IsZero() {
		inv.Mid = one.Div(r.Mid)
	}
	// Bid and ask swap sides on inversion.
	if !r.Ask.IsZero() {
		inv.Bid = one.Div(r.Ask)
	}
	if !r.Bid.IsZero() {
		inv.Ask = one.Div(r.Bid)
	}

	return inv
}

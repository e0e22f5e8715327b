package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
)

// StaticProvider serves quotes from an in-memory table of USD mid rates.
// Cross rates between two non-USD currencies are derived through USD.
type StaticProvider struct {
	// usdMid holds the mid rate for CCY/USD, i.e. how many USD one unit
	// of CCY is worth.
	usdMid    map[string]decimal.Decimal
	spreadPct decimal.Decimal
}

// NewStaticProvider creates a provider with the given half-spread applied
// symmetrically around the mid rate.
func NewStaticProvider(spreadPct float64) *StaticProvider {
	return &StaticProvider{
		spreadPct: decimal.NewFromFloat(spreadPct),
		usdMid: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.NewFromFloat(1.087),
			"GBP": decimal.NewFromFloat(1.266),
			"JPY": decimal.NewFromFloat(0.0067),
			"CHF": decimal.NewFromFloat(1.12),
			"CAD": decimal.NewFromFloat(0.73),
			"AUD": decimal.NewFromFloat(0.65),
			"SGD": decimal.NewFromFloat(0.74),
		},
	}
}

// SetRate overrides or adds the CCY/USD mid rate. Intended for tests and
// for feeds that push refreshed rates into the provider.
func (p *StaticProvider) SetRate(currency string, mid decimal.Decimal) {
	p.usdMid[currency] = mid
}

// GetRate returns the quote for base/quote with bid and ask derived from
// the configured spread.
func (p *StaticProvider) GetRate(_ context.Context, base, quote string) (*domain.FxRate, error) {
	if err := domain.ValidateCurrency(base); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(quote); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if base == quote {
		one := decimal.NewFromInt(1)
		return &domain.FxRate{
			Base:  base,
			Quote: quote,
			Mid:   one,
			Bid:   one,
			Ask:   one,
			AsOf:  now,
		}, nil
	}

	baseUSD, ok := p.usdMid[base]
	if !ok {
		return nil, fmt.Errorf("no rate for %s: %w", base, domain.ErrRateUnavailable)
	}
	quoteUSD, ok := p.usdMid[quote]
	if !ok || quoteUSD.IsZero() {
		return nil, fmt.Errorf("no rate for %s: %w", quote, domain.ErrRateUnavailable)
	}

	mid := baseUSD.Div(quoteUSD)
	half := mid.Mul(p.spreadPct).Div(decimal.NewFromInt(2))

	return &domain.FxRate{
		Base:  base,
		Quote: quote,
		Mid:   mid,
		Bid:   mid.Sub(half),
		Ask:   mid.Add(half),
		AsOf:  now,
	}, nil
}

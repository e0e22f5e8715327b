package fx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

// CachedProvider wraps an FxRateProvider with a read-through cache. Stale
// cache entries are tolerated up to the configured TTL; cache failures fall
// back to the underlying provider.
type CachedProvider struct {
	inner  usecase.FxRateProvider
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProvider creates a caching decorator around inner.
func NewCachedProvider(inner usecase.FxRateProvider, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedRate struct {
	Base  string    `json:"base"`
	Quote string    `json:"quote"`
	Mid   string    `json:"mid"`
	Bid   string    `json:"bid"`
	Ask   string    `json:"ask"`
	AsOf  time.Time `json:"as_of"`
}

// GetRate returns a cached quote when one is fresh, otherwise fetches from
// the underlying provider and stores the result.
func (p *CachedProvider) GetRate(ctx context.Context, base, quote string) (*domain.FxRate, error) {
	key := "fx:" + base + "/" + quote

	raw, err := p.cache.Get(ctx, key)
	if err == nil {
		rate, decodeErr := decodeRate(raw)
		if decodeErr == nil {
			return rate, nil
		}
		p.logger.Warn().Err(decodeErr).Str("key", key).Msg("discarding corrupt cached rate")
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		p.logger.Warn().Err(err).Str("key", key).Msg("rate cache unavailable")
	}

	rate, err := p.inner.GetRate(ctx, base, quote)
	if err != nil {
		return nil, err
	}

	if encoded, encodeErr := encodeRate(rate); encodeErr == nil {
		if setErr := p.cache.Set(ctx, key, encoded, p.ttl); setErr != nil {
			p.logger.Warn().Err(setErr).Str("key", key).Msg("failed to cache rate")
		}
	}

	return rate, nil
}

func encodeRate(rate *domain.FxRate) (string, error) {
	b, err := json.Marshal(cachedRate{
		Base:  rate.Base,
		Quote: rate.Quote,
		Mid:   rate.Mid.String(),
		Bid:   rate.Bid.String(),
		Ask:   rate.Ask.String(),
		AsOf:  rate.AsOf,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRate(raw string) (*domain.FxRate, error) {
	var c cachedRate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}

	mid, err := decimal.NewFromString(c.Mid)
	if err != nil {
		return nil, err
	}
	bid, err := decimal.NewFromString(c.Bid)
	if err != nil {
		return nil, err
	}
	ask, err := decimal.NewFromString(c.Ask)
	if err != nil {
		return nil, err
	}

	return &domain.FxRate{
		Base:  c.Base,
		Quote: c.Quote,
		Mid:   mid,
		Bid:   bid,
		Ask:   ask,
		AsOf:  c.AsOf,
	}, nil
}

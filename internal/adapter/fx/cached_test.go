package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase/mocks"
)

type countingProvider struct {
	inner *StaticProvider
	calls int
}

func (p *countingProvider) GetRate(ctx context.Context, base, quote string) (*domain.FxRate, error) {
	p.calls++
	return p.inner.GetRate(ctx, base, quote)
}

func TestCachedProviderReadsThrough(t *testing.T) {
	inner := &countingProvider{inner: NewStaticProvider(0.002)}
	cache := mocks.NewMockCache()
	p := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := p.GetRate(ctx, "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := p.GetRate(ctx, "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", inner.calls)
	}
	if !first.Mid.Equal(second.Mid) || !first.Bid.Equal(second.Bid) || !first.Ask.Equal(second.Ask) {
		t.Fatalf("cached quote differs from original")
	}
}

func TestCachedProviderSurvivesCacheFailure(t *testing.T) {
	inner := &countingProvider{inner: NewStaticProvider(0.002)}
	cache := mocks.NewMockCache()
	cache.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("connection refused")
	}
	cache.SetFunc = func(ctx context.Context, key, value string, ttl time.Duration) error {
		return errors.New("connection refused")
	}

	p := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())

	rate, err := p.GetRate(context.Background(), "GBP", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Mid.Equal(decimal.NewFromFloat(1.266)) {
		t.Fatalf("expected provider rate, got %s", rate.Mid)
	}
}

func TestCachedProviderDiscardsCorruptEntry(t *testing.T) {
	inner := &countingProvider{inner: NewStaticProvider(0.002)}
	cache := mocks.NewMockCache()
	p := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if err := cache.Set(ctx, "fx:EUR/USD", "{not json", time.Minute); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	rate, err := p.GetRate(ctx, "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fallthrough to provider, got %d calls", inner.calls)
	}
	if rate.Mid.IsZero() {
		t.Fatalf("expected a real quote")
	}
}

func TestCachedProviderPropagatesProviderError(t *testing.T) {
	inner := &countingProvider{inner: NewStaticProvider(0.002)}
	cache := mocks.NewMockCache()
	p := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())

	_, err := p.GetRate(context.Background(), "SEK", "USD")
	if !errors.Is(err, domain.ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

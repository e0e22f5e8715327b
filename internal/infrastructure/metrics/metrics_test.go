package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersOnDefaultRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	for name, c := range map[string]any{
		"JournalsPosted":       m.JournalsPosted,
		"SettlementsCompleted": m.SettlementsCompleted,
		"SettlementsFailed":    m.SettlementsFailed,
		"HTTPRequests":         m.HTTPRequests,
	} {
		if c == nil {
			t.Fatalf("collector %s not initialized", name)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}
}

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"catalogconsole/internal/store"
)

func TestObserveStoreCountsCompletionsOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStore(store.Event{Resource: "product", Op: store.OpCreate, Phase: store.PhasePending})
	m.ObserveStore(store.Event{Resource: "product", Op: store.OpCreate, Phase: store.PhaseFulfilled, Duration: 120 * time.Millisecond})
	m.ObserveStore(store.Event{Resource: "product", Op: store.OpCreate, Phase: store.PhaseRejected, Duration: time.Second})

	if got := testutil.ToFloat64(m.requests.WithLabelValues("product", "create", OutcomeSuccess)); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("product", "create", OutcomeFailure)); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestResolutionCounterExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncResolution(OutcomeSuccess)
	m.IncResolution("")

	want := `
# HELP console_auth_resolutions_total Who-am-i resolutions by outcome.
# TYPE console_auth_resolutions_total counter
console_auth_resolutions_total{outcome="success"} 1
console_auth_resolutions_total{outcome="unknown"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "console_auth_resolutions_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := New(nil)
	m.ObserveStore(store.Event{Phase: store.PhaseFulfilled})
	m.IncResolution(OutcomeFailure)

	var none *ConsoleMetrics
	none.ObserveStore(store.Event{Phase: store.PhaseRejected})
	none.IncResolution(OutcomeSuccess)
}

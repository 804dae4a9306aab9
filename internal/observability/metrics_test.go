package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues("GET", "/api/health", "2xx").Inc()
	RequestDuration.WithLabelValues("GET", "/api/health").Observe(0.01)
	AuthDecisions.WithLabelValues("require", "rejected").Inc()
	BridgeRequests.WithLabelValues("ok").Inc()
	SessionsPurged.Add(2)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"authgw_requests_total":           false,
		"authgw_request_duration_seconds": false,
		"authgw_auth_decisions_total":     false,
		"authgw_bridge_requests_total":    false,
		"authgw_sessions_purged_total":    false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestAuthDecisionsLabels(t *testing.T) {
	counter := AuthDecisions.WithLabelValues("optional", "anonymous")
	before := counterValue(t, counter)
	counter.Inc()
	if got := counterValue(t, counter); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

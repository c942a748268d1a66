package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewRegistersAllInstruments(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 7 {
		t.Fatalf("expected 7 registered metric families, got %d", len(families))
	}

	m.ConnectAttempts.Inc()
	m.ConnectAttempts.Inc()
	if got := counterValue(t, m.ConnectAttempts); got != 2 {
		t.Fatalf("expected ConnectAttempts=2, got %v", got)
	}
}

func TestNewWithNilRegistererIsUsable(t *testing.T) {
	t.Parallel()

	m := New(nil)
	m.DecodeErrors.Inc()
	if got := counterValue(t, m.DecodeErrors); got != 1 {
		t.Fatalf("expected DecodeErrors=1, got %v", got)
	}
}

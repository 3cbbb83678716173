package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

// counterValue sums the counter samples whose labels include want.
func counterValue(f *dto.MetricFamily, want map[string]string) float64 {
	var sum float64
	for _, m := range f.GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		match := true
		for k, v := range want {
			if labels[k] != v {
				match = false
			}
		}
		if match {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnStageComplete(ctx, "mdg", 10, 12, time.Millisecond, nil)
	h.OnStageComplete(ctx, "mdg", 0, 0, time.Millisecond, errors.New("boom"))
	h.OnValidate(ctx, "fpg", 3)
	h.OnCacheHit(ctx, "mdg")
	h.OnCacheMiss(ctx, "mdg")
	h.OnCacheMiss(ctx, "mdg")
	h.OnCacheSet(ctx, "mdg", 512)
	h.OnRequest(ctx, "POST", "/v1/roles")
	h.OnResponse(ctx, "POST", "/v1/roles", 200, time.Millisecond)

	fams := gather(t, reg)
	tests := []struct {
		family string
		labels map[string]string
		want   float64
	}{
		{"mdaograph_stage_runs_total", map[string]string{"stage": "mdg", "outcome": "ok"}, 1},
		{"mdaograph_stage_runs_total", map[string]string{"stage": "mdg", "outcome": "error"}, 1},
		{"mdaograph_validate_findings_total", map[string]string{"stage": "fpg"}, 3},
		{"mdaograph_cache_lookups_total", map[string]string{"result": "hit"}, 1},
		{"mdaograph_cache_lookups_total", map[string]string{"result": "miss"}, 2},
		{"mdaograph_cache_written_bytes_total", nil, 512},
		{"mdaograph_http_requests_total", map[string]string{"route": "/v1/roles", "code": "200"}, 1},
	}
	for _, tt := range tests {
		f, ok := fams[tt.family]
		if !ok {
			t.Errorf("family %s not registered", tt.family)
			continue
		}
		if got := counterValue(f, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.family, tt.labels, got, tt.want)
		}
	}
}

func TestPrometheusHooksRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering the same collectors twice should panic")
		}
	}()
	NewPrometheusHooks(reg)
}

package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)

	metrics.Observe("POST", "/api/v1/cart/add", 200, 150*time.Millisecond)
	metrics.Observe("POST", "/api/v1/cart/add", 200, 50*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/v1/cart/add"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected requests=2, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/cart/add"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestHTTPMetricsNilReceiverIsNoop(t *testing.T) {
	var metrics *HTTPMetrics
	metrics.Observe("GET", "/", 200, time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, labelName, labelValue) {
				return m.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelName, labelValue)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, labelName, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, labelName, labelValue) {
				return m.GetHistogram().GetSampleSum(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelName, labelValue)
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, label := range m.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

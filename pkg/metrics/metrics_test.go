package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestRecordFallbackAndResolution(t *testing.T) {
	Reset()

	RecordResolution("local")
	RecordResolution("local")
	RecordResolution("crm")
	RecordFallback("reply")

	res := GetMetrics()["resolution"].(map[string]interface{})
	resolved := res["resolved_by"].(map[string]int64)
	if resolved["local"] != 2 || resolved["crm"] != 1 {
		t.Errorf("resolved_by = %v, want local=2 crm=1", resolved)
	}
	fallbacks := res["fallbacks"].(map[string]int64)
	if fallbacks["reply"] != 1 {
		t.Errorf("fallbacks = %v, want reply=1", fallbacks)
	}
}

func TestRecordServiceCall_LatencyWindow(t *testing.T) {
	Reset()

	for i := 0; i < maxLatencySamples+10; i++ {
		RecordServiceCall("crm", i%2 == 0, time.Millisecond)
	}

	globalMetrics.mu.RLock()
	n := len(globalMetrics.ServiceLatency["crm"])
	errs := globalMetrics.ServiceErrors["crm"]
	globalMetrics.mu.RUnlock()

	if n != maxLatencySamples {
		t.Errorf("latency samples = %d, want %d", n, maxLatencySamples)
	}
	if errs != 55 {
		t.Errorf("service errors = %d, want 55", errs)
	}
}

func TestGetPrometheusMetrics(t *testing.T) {
	Reset()
	RecordRequest("/voice/incoming", true, 5*time.Millisecond)
	RecordFallback("crm")

	out := GetPrometheusMetrics()
	for _, want := range []string{
		`api_requests_total{status="successful"} 1`,
		`api_endpoint_requests_total{endpoint="/voice/incoming"} 1`,
		`call_fallbacks_total{component="crm"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GetPrometheusMetrics() missing %q", want)
		}
	}
}

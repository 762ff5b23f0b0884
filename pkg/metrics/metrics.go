package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxLatencySamples = 100

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	EndpointRequests map[string]int64
	EndpointErrors   map[string]int64
	EndpointLatency  map[string][]time.Duration

	ServiceCalls   map[string]int64
	ServiceErrors  map[string]int64
	ServiceLatency map[string][]time.Duration

	CircuitBreakerState    map[string]string
	CircuitBreakerFailures map[string]int64

	// Resolution stage -> number of turns served by that stage
	ResolvedBy map[string]int64
	// Component -> number of times a degraded fallback value was used
	Fallbacks map[string]int64

	StartTime time.Time
}

var globalMetrics = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{
		EndpointRequests:       make(map[string]int64),
		EndpointErrors:         make(map[string]int64),
		EndpointLatency:        make(map[string][]time.Duration),
		ServiceCalls:           make(map[string]int64),
		ServiceErrors:          make(map[string]int64),
		ServiceLatency:         make(map[string][]time.Duration),
		CircuitBreakerState:    make(map[string]string),
		CircuitBreakerFailures: make(map[string]int64),
		ResolvedBy:             make(map[string]int64),
		Fallbacks:              make(map[string]int64),
		StartTime:              time.Now(),
	}
}

// Reset clears all counters. Intended for tests.
func Reset() {
	m := newMetrics()
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.TotalRequests = 0
	globalMetrics.SuccessfulRequests = 0
	globalMetrics.FailedRequests = 0
	globalMetrics.EndpointRequests = m.EndpointRequests
	globalMetrics.EndpointErrors = m.EndpointErrors
	globalMetrics.EndpointLatency = m.EndpointLatency
	globalMetrics.ServiceCalls = m.ServiceCalls
	globalMetrics.ServiceErrors = m.ServiceErrors
	globalMetrics.ServiceLatency = m.ServiceLatency
	globalMetrics.CircuitBreakerState = m.CircuitBreakerState
	globalMetrics.CircuitBreakerFailures = m.CircuitBreakerFailures
	globalMetrics.ResolvedBy = m.ResolvedBy
	globalMetrics.Fallbacks = m.Fallbacks
	globalMetrics.StartTime = m.StartTime
}

func appendLatency(samples []time.Duration, latency time.Duration) []time.Duration {
	if len(samples) >= maxLatencySamples {
		samples = samples[1:]
	}
	return append(samples, latency)
}

// RecordRequest records a request
func RecordRequest(endpoint string, success bool, latency time.Duration) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.TotalRequests++
	if success {
		globalMetrics.SuccessfulRequests++
	} else {
		globalMetrics.FailedRequests++
		globalMetrics.EndpointErrors[endpoint]++
	}

	globalMetrics.EndpointRequests[endpoint]++
	globalMetrics.EndpointLatency[endpoint] = appendLatency(globalMetrics.EndpointLatency[endpoint], latency)
}

// RecordServiceCall records an outbound service call
func RecordServiceCall(service string, success bool, latency time.Duration) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.ServiceCalls[service]++
	if !success {
		globalMetrics.ServiceErrors[service]++
	}
	globalMetrics.ServiceLatency[service] = appendLatency(globalMetrics.ServiceLatency[service], latency)
}

// UpdateCircuitBreaker updates circuit breaker metrics
func UpdateCircuitBreaker(service, state string, failures int64) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.CircuitBreakerState[service] = state
	globalMetrics.CircuitBreakerFailures[service] = failures
}

// RecordResolution counts which profile source served a call turn.
func RecordResolution(source string) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.ResolvedBy[source]++
}

// RecordFallback counts a degraded value being substituted by component.
func RecordFallback(component string) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.Fallbacks[component]++
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func averages(in map[string][]time.Duration) map[string]float64 {
	out := make(map[string]float64, len(in))
	for key, latencies := range in {
		if len(latencies) == 0 {
			continue
		}
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		out[key] = sum.Seconds() / float64(len(latencies))
	}
	return out
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds": time.Since(globalMetrics.StartTime).Seconds(),
		"requests": map[string]interface{}{
			"total":      globalMetrics.TotalRequests,
			"successful": globalMetrics.SuccessfulRequests,
			"failed":     globalMetrics.FailedRequests,
		},
		"endpoints": map[string]interface{}{
			"requests":            copyCounts(globalMetrics.EndpointRequests),
			"errors":              copyCounts(globalMetrics.EndpointErrors),
			"latency_avg_seconds": averages(globalMetrics.EndpointLatency),
		},
		"services": map[string]interface{}{
			"calls":               copyCounts(globalMetrics.ServiceCalls),
			"errors":              copyCounts(globalMetrics.ServiceErrors),
			"latency_avg_seconds": averages(globalMetrics.ServiceLatency),
		},
		"circuit_breakers": map[string]interface{}{
			"state":    globalMetrics.CircuitBreakerState,
			"failures": copyCounts(globalMetrics.CircuitBreakerFailures),
		},
		"resolution": map[string]interface{}{
			"resolved_by": copyCounts(globalMetrics.ResolvedBy),
			"fallbacks":   copyCounts(globalMetrics.Fallbacks),
		},
	}
}

func writeCounter(b *strings.Builder, name, help, label string, values map[string]int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

// GetPrometheusMetrics returns metrics in Prometheus text format
func GetPrometheusMetrics() string {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP api_uptime_seconds API uptime in seconds\n")
	b.WriteString("# TYPE api_uptime_seconds gauge\n")
	fmt.Fprintf(&b, "api_uptime_seconds %.2f\n", time.Since(globalMetrics.StartTime).Seconds())

	writeCounter(&b, "api_requests_total", "Total number of requests", "status", map[string]int64{
		"total":      globalMetrics.TotalRequests,
		"successful": globalMetrics.SuccessfulRequests,
		"failed":     globalMetrics.FailedRequests,
	})
	writeCounter(&b, "api_endpoint_requests_total", "Total requests per endpoint", "endpoint", globalMetrics.EndpointRequests)
	writeCounter(&b, "api_endpoint_errors_total", "Total errors per endpoint", "endpoint", globalMetrics.EndpointErrors)
	writeCounter(&b, "api_service_calls_total", "Total calls per outbound service", "service", globalMetrics.ServiceCalls)
	writeCounter(&b, "api_service_errors_total", "Total failed calls per outbound service", "service", globalMetrics.ServiceErrors)
	writeCounter(&b, "call_profile_resolved_total", "Call turns per profile source", "source", globalMetrics.ResolvedBy)
	writeCounter(&b, "call_fallbacks_total", "Degraded fallbacks per component", "component", globalMetrics.Fallbacks)

	return b.String()
}

package logging

import (
	"sort"
	"sync"
)

const (
	metricEventsTotal   = "logging_events_total"
	metricEventsDropped = "logging_events_dropped_total"
	metricSinkFailures  = "logging_sink_failures_total"
	metricSinkDropped   = "logging_sink_dropped_total"
)

// Metrics is a concurrency-safe set of named counters and gauges. A nil
// *Metrics ignores writes.
type Metrics struct {
	mu     sync.RWMutex
	values map[string]uint64
}

// NewMetrics constructs an empty metric set.
func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

// Add increments a counter.
func (m *Metrics) Add(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] += delta
	m.mu.Unlock()
}

// Store overwrites a gauge.
func (m *Metrics) Store(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] = value
	m.mu.Unlock()
}

// TelemetryAdd increments a counter on behalf of server components.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	m.Add(key, delta)
}

// TelemetryStore overwrites a gauge on behalf of server components.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	m.Store(key, value)
}

// Value returns the current value of key.
func (m *Metrics) Value(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Snapshot copies every metric.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Keys lists metric names in order.
func (m *Metrics) Keys() []string {
	snapshot := m.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

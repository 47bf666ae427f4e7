package stdout

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/harshkrt/FinAgent/shared/application/ports"
)

// Metrics keeps measurements in memory and logs each one at debug level.
// It backs local development and tests.
type Metrics struct {
	store  *store
	tags   map[string]string
	logger *slog.Logger
}

type store struct {
	mu         sync.RWMutex
	counters   map[string]int64
	histograms map[string][]float64
	gauges     map[string]float64
}

// NewMetrics creates a new in-memory metrics instance. logger may be nil.
func NewMetrics(logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discard{}, nil))
	}
	return &Metrics{
		store: &store{
			counters:   make(map[string]int64),
			histograms: make(map[string][]float64),
			gauges:     make(map[string]float64),
		},
		tags:   map[string]string{},
		logger: logger,
	}
}

func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	key := m.buildKey(name, tags)

	m.store.mu.Lock()
	m.store.counters[key]++
	value := m.store.counters[key]
	m.store.mu.Unlock()

	m.logger.Debug("metric", "type", "counter", "key", key, "value", value)
}

func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	key := m.buildKey(name, tags)

	m.store.mu.Lock()
	m.store.histograms[key] = append(m.store.histograms[key], value)
	m.store.mu.Unlock()

	m.logger.Debug("metric", "type", "histogram", "key", key, "value", value)
}

func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	key := m.buildKey(name, tags)

	m.store.mu.Lock()
	m.store.gauges[key] = value
	m.store.mu.Unlock()

	m.logger.Debug("metric", "type", "gauge", "key", key, "value", value)
}

// WithTags returns a Metrics sharing the same store with additional default tags
func (m *Metrics) WithTags(tags map[string]string) ports.Metrics {
	return &Metrics{
		store:  m.store,
		tags:   mergeTags(m.tags, tags),
		logger: m.logger,
	}
}

// GetCounter returns the value recorded for name and the exact tag set,
// including default tags.
func (m *Metrics) GetCounter(name string, tags map[string]string) int64 {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return m.store.counters[m.buildKey(name, tags)]
}

// CounterTotal sums a counter across every tag set.
func (m *Metrics) CounterTotal(name string) int64 {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var total int64
	for key, value := range m.store.counters {
		if key == name || strings.HasPrefix(key, name+"{") {
			total += value
		}
	}
	return total
}

// HistogramCount returns how many values were recorded under name.
func (m *Metrics) HistogramCount(name string) int {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	count := 0
	for key, values := range m.store.histograms {
		if key == name || strings.HasPrefix(key, name+"{") {
			count += len(values)
		}
	}
	return count
}

// buildKey renders name{k=v,...} with sorted tags
func (m *Metrics) buildKey(name string, tags map[string]string) string {
	all := mergeTags(m.tags, tags)
	if len(all) == 0 {
		return name
	}

	parts := make([]string, 0, len(all))
	for k, v := range all {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	return name + "{" + strings.Join(parts, ",") + "}"
}

func mergeTags(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

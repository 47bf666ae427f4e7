// Package prometheus adapts ports.Metrics to Prometheus collectors.
//
// ports.Metrics accepts arbitrary tag sets while a Prometheus vector needs a
// fixed label set, so every measurement is recorded under one of four
// vectors labelled by metric, component and the remaining tags rendered as a
// sorted k=v list:
//
//	{namespace}_events_total{metric, component, tags}
//	{namespace}_duration_seconds{metric, component, tags}
//	{namespace}_file_size_bytes{metric, component, tags}
//	{namespace}_gauge{metric, component, tags}
//
// Histograms whose name ends in ".size" or ".bytes" are sizes in bytes; all
// other histograms are durations in seconds.
package prometheus

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harshkrt/FinAgent/shared/application/ports"
)

var labels = []string{"metric", "component", "tags"}

// process-wide tags that are constant for a running binary and would only
// duplicate the namespace
var constantTags = map[string]bool{"service": true, "version": true, "env": true}

type collectors struct {
	events          *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	fileSizeBytes   *prometheus.HistogramVec
	gauges          *prometheus.GaugeVec
}

// Metrics implements ports.Metrics with Prometheus vectors
type Metrics struct {
	collectors *collectors
	tags       map[string]string
}

// New registers the gateway collectors with reg under namespace.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	namespace = sanitize(namespace)

	c := &collectors{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Discrete events such as requests, failures and publishes.",
		}, labels),
		durationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Operation durations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		// 1KB, 10KB, 100KB, 1MB, 10MB, 100MB, 1GB
		fileSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_size_bytes",
			Help:      "Document sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
		}, labels),
		gauges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gauge",
			Help:      "Point in time measurements.",
		}, labels),
	}

	for _, collector := range []prometheus.Collector{c.events, c.durationSeconds, c.fileSizeBytes, c.gauges} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return &Metrics{collectors: c, tags: map[string]string{}}, nil
}

func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.collectors.events.WithLabelValues(m.labelValues(name, tags)...).Inc()
}

func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	histogram := m.collectors.durationSeconds
	if isSize(name) {
		histogram = m.collectors.fileSizeBytes
	}
	histogram.WithLabelValues(m.labelValues(name, tags)...).Observe(value)
}

func isSize(name string) bool {
	return strings.HasSuffix(name, ".size") || strings.HasSuffix(name, ".bytes")
}

func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.collectors.gauges.WithLabelValues(m.labelValues(name, tags)...).Set(value)
}

func (m *Metrics) WithTags(tags map[string]string) ports.Metrics {
	merged := make(map[string]string, len(m.tags)+len(tags))
	for k, v := range m.tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return &Metrics{collectors: m.collectors, tags: merged}
}

func (m *Metrics) labelValues(name string, tags map[string]string) []string {
	component := m.tags["component"]
	if c, ok := tags["component"]; ok {
		component = c
	}

	parts := make([]string, 0, len(m.tags)+len(tags))
	seen := make(map[string]bool, len(tags))
	for k, v := range tags {
		if k == "component" || constantTags[k] {
			continue
		}
		seen[k] = true
		parts = append(parts, k+"="+v)
	}
	for k, v := range m.tags {
		if k == "component" || constantTags[k] || seen[k] {
			continue
		}
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	return []string{name, component, strings.Join(parts, ",")}
}

func sanitize(namespace string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, namespace)
}

package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counter names
const (
	metricCacheHits       = "cache_hits"
	metricCacheMisses     = "cache_misses"
	metricCacheEvictions  = "cache_evictions"
	metricCacheRejections = "cache_rejections"
	metricDecodeFailures  = "decode_failures"
	metricImagesLoaded    = "images_loaded"
)

// MetricsRegistry keeps local counters for the info overlay and mirrors
// every increment to an OTel counter instrument.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter
}

func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*atomic.Int64),
		meter:    otel.GetMeterProvider().Meter("pview"),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// Inc increases a named counter by n. Labels only affect the OTel mirror.
func (r *MetricsRegistry) Inc(ctx context.Context, name string, n int64, attrs ...attribute.KeyValue) {
	if r == nil {
		return
	}

	r.mu.RLock()
	c := r.counters[name]
	inst := r.otelCtrs[name]
	r.mu.RUnlock()

	if c == nil || inst == nil {
		r.mu.Lock()
		if c = r.counters[name]; c == nil {
			c = new(atomic.Int64)
			r.counters[name] = c
		}
		if inst = r.otelCtrs[name]; inst == nil {
			ctr, err := r.meter.Int64Counter(name)
			if err != nil {
				debugLog("Cannot create OTel counter %s: %v", name, err)
			}
			r.otelCtrs[name] = ctr
			inst = ctr
		}
		r.mu.Unlock()
	}

	c.Add(n)
	if inst != nil {
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Get returns the current value of a counter.
func (r *MetricsRegistry) Get(name string) int64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.counters[name]; c != nil {
		return c.Load()
	}
	return 0
}

// SnapshotLines returns sorted "name value" lines.
func (r *MetricsRegistry) SnapshotLines() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s %d", name, r.counters[name].Load()))
	}
	return lines
}

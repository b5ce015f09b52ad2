package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// MetricResult categorizes a delivery outcome for metrics reporting.
type MetricResult string

const (
	MetricSuccess MetricResult = "success"
	MetricFailed  MetricResult = "failed"
	MetricSkipped MetricResult = "skipped"
)

// Metrics abstracts delivery telemetry. The core records one result per
// (event, channel) pair plus the delivery latency; success or failure is
// never returned to the event originator, so metrics and logs are the only
// observability surface.
type Metrics interface {
	RecordDelivery(ctx context.Context, channel types.ChannelKind, kind types.EventKind, result MetricResult)
	RecordLatency(ctx context.Context, channel types.ChannelKind, duration time.Duration)
}

// LogMetrics emits delivery telemetry as structured log lines.
type LogMetrics struct {
	logger types.Logger
}

var _ Metrics = (*LogMetrics)(nil)

// NewLogMetrics creates a Metrics implementation backed by the logger.
func NewLogMetrics(logger types.Logger) *LogMetrics {
	return &LogMetrics{logger: logger}
}

func (m *LogMetrics) RecordDelivery(_ context.Context, channel types.ChannelKind, kind types.EventKind, result MetricResult) {
	m.logger.Info("delivery recorded",
		"channel", string(channel),
		"event_kind", string(kind),
		"result", string(result),
	)
}

func (m *LogMetrics) RecordLatency(_ context.Context, channel types.ChannelKind, duration time.Duration) {
	m.logger.Info("delivery latency",
		"channel", string(channel),
		"duration_ms", duration.Milliseconds(),
	)
}

// CounterMetrics is a thread-safe in-memory Metrics implementation used by
// tests and by hosts that poll counters instead of scraping logs.
type CounterMetrics struct {
	mu        sync.Mutex
	counts    map[types.ChannelKind]map[MetricResult]int
	latencies map[types.ChannelKind][]time.Duration
}

var _ Metrics = (*CounterMetrics)(nil)

// NewCounterMetrics creates an empty CounterMetrics.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		counts:    make(map[types.ChannelKind]map[MetricResult]int),
		latencies: make(map[types.ChannelKind][]time.Duration),
	}
}

func (m *CounterMetrics) RecordDelivery(_ context.Context, channel types.ChannelKind, _ types.EventKind, result MetricResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[channel] == nil {
		m.counts[channel] = make(map[MetricResult]int)
	}
	m.counts[channel][result]++
}

func (m *CounterMetrics) RecordLatency(_ context.Context, channel types.ChannelKind, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[channel] = append(m.latencies[channel], duration)
}

// Count returns the number of deliveries recorded for a channel and result.
func (m *CounterMetrics) Count(channel types.ChannelKind, result MetricResult) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[channel][result]
}

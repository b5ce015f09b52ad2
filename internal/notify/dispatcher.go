package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// Dispatcher fans one domain event out to every registered channel agent.
// Deliveries are independent and run concurrently; there is no shared
// mutable state between agents beyond the immutable event, so no ordering
// guarantee exists between channels for the same event.
type Dispatcher struct {
	registry *Registry
	metrics  Metrics
	logger   types.Logger
	clock    types.Clock
}

// NewDispatcher creates a Dispatcher over the given registry.
func NewDispatcher(registry *Registry, metrics Metrics, logger types.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		clock:    types.RealClock{},
	}
}

// SetClock overrides the clock for testing.
func (d *Dispatcher) SetClock(c types.Clock) {
	d.clock = c
}

// Dispatch delivers one event through every registered agent, one worker per
// (event, channel) pair. It returns when all agents finish or ctx is done;
// its return conveys no success/failure signal by design — a failed channel
// is observable only through logs and metrics, and never aborts the other
// channels or the workflow that raised the event.
//
// Each dispatch gets a trace ID carried in the context so log lines and
// outbound trace headers from all channels of one fan-out correlate.
func (d *Dispatcher) Dispatch(ctx context.Context, event types.NotificationEvent) {
	if types.GetDispatchID(ctx) == "" {
		ctx = types.WithDispatchID(ctx, uuid.New().String())
	}

	logger := d.logger.With(
		"dispatch_id", types.GetDispatchID(ctx),
		"event_kind", string(event.Kind),
	)
	logger.Info("dispatching notification event", "channels", len(d.registry.Agents()))

	g, gctx := errgroup.WithContext(ctx)
	for _, agent := range d.registry.Agents() {
		agent := agent
		g.Go(func() error {
			d.deliver(gctx, agent, event, logger)
			// Always nil: one channel's failure must never cancel siblings
			// through the group context.
			return nil
		})
	}
	_ = g.Wait()
}

// deliver runs one agent and absorbs its outcome into logs and metrics.
// Panics from programming errors (unknown subject variant) are deliberately
// not recovered here: they indicate a core invariant violation that should
// surface during development, not a runtime operating condition.
func (d *Dispatcher) deliver(ctx context.Context, agent Agent, event types.NotificationEvent, logger types.Logger) {
	start := d.clock.Now()
	err := agent.Notify(ctx, event)
	d.metrics.RecordLatency(ctx, agent.Kind(), d.clock.Now().Sub(start))

	switch {
	case err == nil:
		d.metrics.RecordDelivery(ctx, agent.Kind(), event.Kind, MetricSuccess)
	case errors.Is(err, ErrSkipped):
		// The agent already logged the skip reason with its own context.
		d.metrics.RecordDelivery(ctx, agent.Kind(), event.Kind, MetricSkipped)
	default:
		logger.Error("notification delivery failed",
			"channel", string(agent.Kind()),
			"error", err.Error(),
		)
		d.metrics.RecordDelivery(ctx, agent.Kind(), event.Kind, MetricFailed)
	}
}

// DispatchTo delivers one event through a single named channel. Used by the
// per-channel "send a test notification" operation.
func (d *Dispatcher) DispatchTo(ctx context.Context, channel types.ChannelKind, event types.NotificationEvent) error {
	agent := d.registry.Get(channel)
	if agent == nil {
		return fmt.Errorf("notify: no agent registered for channel %q", channel)
	}
	if types.GetDispatchID(ctx) == "" {
		ctx = types.WithDispatchID(ctx, uuid.New().String())
	}
	d.deliver(ctx, agent, event, d.logger.With(
		"dispatch_id", types.GetDispatchID(ctx),
		"event_kind", string(event.Kind),
	))
	return nil
}

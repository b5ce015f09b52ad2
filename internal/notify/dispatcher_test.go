package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// stubAgent records every event it receives and returns a fixed error.
type stubAgent struct {
	kind types.ChannelKind
	err  error

	mu     sync.Mutex
	events []types.NotificationEvent
	ids    []string
}

func (a *stubAgent) Kind() types.ChannelKind { return a.kind }

func (a *stubAgent) Notify(ctx context.Context, event types.NotificationEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	a.ids = append(a.ids, types.GetDispatchID(ctx))
	return a.err
}

func (a *stubAgent) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func discardLogger() types.Logger {
	return types.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDispatchFansOutToAllAgents(t *testing.T) {
	discord := &stubAgent{kind: types.ChannelDiscord}
	slack := &stubAgent{kind: types.ChannelSlack}
	metrics := NewCounterMetrics()
	d := NewDispatcher(NewRegistry(discord, slack), metrics, discardLogger())

	d.Dispatch(context.Background(), types.NewRequestEvent(types.EventNewRequest, testMovie()))

	assert.Equal(t, 1, discord.calls())
	assert.Equal(t, 1, slack.calls())
	assert.Equal(t, 1, metrics.Count(types.ChannelDiscord, MetricSuccess))
	assert.Equal(t, 1, metrics.Count(types.ChannelSlack, MetricSuccess))
}

func TestDispatchSwallowsAgentFailure(t *testing.T) {
	failing := &stubAgent{kind: types.ChannelDiscord, err: errors.New("webhook returned 500")}
	healthy := &stubAgent{kind: types.ChannelEmail}
	metrics := NewCounterMetrics()
	d := NewDispatcher(NewRegistry(failing, healthy), metrics, discardLogger())

	// Must not panic or propagate the failure; the healthy channel still runs.
	d.Dispatch(context.Background(), types.NewRequestEvent(types.EventRequestApproved, testMovie()))

	assert.Equal(t, 1, healthy.calls())
	assert.Equal(t, 1, metrics.Count(types.ChannelDiscord, MetricFailed))
	assert.Equal(t, 1, metrics.Count(types.ChannelEmail, MetricSuccess))
}

func TestDispatchRecordsSkipAsSkippedNotSuccess(t *testing.T) {
	skipping := &stubAgent{kind: types.ChannelDiscord, err: ErrSkipped}
	metrics := NewCounterMetrics()
	d := NewDispatcher(NewRegistry(skipping), metrics, discardLogger())

	d.Dispatch(context.Background(), types.NewRequestEvent(types.EventNewRequest, testMovie()))

	assert.Equal(t, 1, metrics.Count(types.ChannelDiscord, MetricSkipped))
	assert.Equal(t, 0, metrics.Count(types.ChannelDiscord, MetricSuccess))
	assert.Equal(t, 0, metrics.Count(types.ChannelDiscord, MetricFailed))
}

func TestDispatchAssignsSharedDispatchID(t *testing.T) {
	discord := &stubAgent{kind: types.ChannelDiscord}
	slack := &stubAgent{kind: types.ChannelSlack}
	d := NewDispatcher(NewRegistry(discord, slack), NewCounterMetrics(), discardLogger())

	d.Dispatch(context.Background(), types.NewRequestEvent(types.EventNewRequest, testMovie()))

	require.Len(t, discord.ids, 1)
	require.Len(t, slack.ids, 1)
	assert.NotEmpty(t, discord.ids[0])
	assert.Equal(t, discord.ids[0], slack.ids[0], "all channels of one fan-out share a dispatch id")
}

func TestDispatchPreservesCallerDispatchID(t *testing.T) {
	agent := &stubAgent{kind: types.ChannelDiscord}
	d := NewDispatcher(NewRegistry(agent), NewCounterMetrics(), discardLogger())

	ctx := types.WithDispatchID(context.Background(), "caller-id")
	d.Dispatch(ctx, types.NewRequestEvent(types.EventNewRequest, testMovie()))

	require.Len(t, agent.ids, 1)
	assert.Equal(t, "caller-id", agent.ids[0])
}

func TestDispatchToSingleChannel(t *testing.T) {
	discord := &stubAgent{kind: types.ChannelDiscord}
	slack := &stubAgent{kind: types.ChannelSlack}
	d := NewDispatcher(NewRegistry(discord, slack), NewCounterMetrics(), discardLogger())

	err := d.DispatchTo(context.Background(), types.ChannelDiscord, types.NotificationEvent{Kind: types.EventTest})
	require.NoError(t, err)

	assert.Equal(t, 1, discord.calls())
	assert.Equal(t, 0, slack.calls())
}

func TestDispatchToUnknownChannel(t *testing.T) {
	d := NewDispatcher(NewRegistry(), NewCounterMetrics(), discardLogger())

	err := d.DispatchTo(context.Background(), types.ChannelPushbullet, types.NotificationEvent{Kind: types.EventTest})
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicateChannel(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(
			&stubAgent{kind: types.ChannelDiscord},
			&stubAgent{kind: types.ChannelDiscord},
		)
	})
}

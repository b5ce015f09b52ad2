package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// ErrSkipped signals that an agent intentionally performed no delivery:
// channel disabled, settings invalid, or template disabled/missing. The
// dispatcher records it as a skipped delivery instead of a success. Agents
// log the reason themselves before returning it.
var ErrSkipped = errors.New("notify: delivery skipped")

// Agent is implemented once per channel. Notify runs the agent's full
// pipeline for one event: load and validate its own settings snapshot,
// render (or bypass for the queue-retry event), build the channel payload
// and send. The returned error exists only so the dispatcher can record the
// outcome — it is never surfaced to the event originator. A misconfigured or
// disabled channel returns ErrSkipped; any other error is a delivery
// failure.
type Agent interface {
	Kind() types.ChannelKind
	Notify(ctx context.Context, event types.NotificationEvent) error
}

// Registry maps each ChannelKind to its single agent implementation.
// Registration happens at startup; the registry is read-only afterwards.
type Registry struct {
	agents map[types.ChannelKind]Agent
	order  []types.ChannelKind
}

// NewRegistry creates a Registry holding the given agents. Registering two
// agents for the same channel is a wiring bug and panics.
func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[types.ChannelKind]Agent, len(agents))}
	for _, a := range agents {
		if _, dup := r.agents[a.Kind()]; dup {
			panic(fmt.Sprintf("notify: duplicate agent registered for channel %q", a.Kind()))
		}
		r.agents[a.Kind()] = a
		r.order = append(r.order, a.Kind())
	}
	return r
}

// Agents returns all registered agents in registration order.
func (r *Registry) Agents() []Agent {
	out := make([]Agent, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.agents[kind])
	}
	return out
}

// Get returns the agent for a channel, or nil when none is registered.
func (r *Registry) Get(kind types.ChannelKind) Agent {
	return r.agents[kind]
}

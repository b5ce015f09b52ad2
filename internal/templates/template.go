// Package templates holds the notification template store: per
// (channel, event-kind) message templates with an enabled flag and flat
// placeholder substitution. The store is a pure lookup — it owns no business
// logic and no cache invalidation; template persistence belongs to the
// surrounding application's settings layer.
package templates

import (
	"context"
	"errors"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// ErrNotConfigured is returned by Lookup when no template row exists for a
// (channel, kind) pair. Callers must treat it identically to Enabled=false:
// skip delivery silently with an informational log.
var ErrNotConfigured = errors.New("templates: no template configured for channel/kind")

// Template is the stored message template for one (channel, kind) pair.
// Subject and Body carry {Placeholder} tokens substituted at render time.
// Image, when set, is the lowest-priority image source for the rendered
// message.
type Template struct {
	Channel types.ChannelKind
	Kind    types.EventKind
	Enabled bool
	Subject string
	Body    string
	Image   string
}

// Store is the template lookup contract. Lookups are pure reads with no side
// effects on this core.
type Store interface {
	Lookup(ctx context.Context, channel types.ChannelKind, kind types.EventKind) (Template, error)
}

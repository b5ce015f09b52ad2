package discord

import "github.com/tidusjar/RequestPlex/internal/types"

// Layout holds the two per-event-kind presentation toggles. Compact swaps
// the full image and description for a thumbnail; Mention appends the
// requester's alias as a distinguished field so a "<@id>" alias triggers a
// client-side at-mention.
type Layout struct {
	Compact bool
	Mention bool
}

// Defaults: request milestones that need quick triage render compact; the
// kinds a requester cares about personally mention them.
var (
	defaultCompact = map[types.EventKind]bool{
		types.EventNewRequest:      true,
		types.EventRequestApproved: true,
		types.EventRequestDeclined: true,
	}
	defaultMention = map[types.EventKind]bool{
		types.EventRequestAvailable: true,
		types.EventRequestApproved:  true,
		types.EventRequestDeclined:  true,
	}
)

// buildLayouts merges the settings snapshot's overrides onto the static
// defaults. The result is built fresh per dispatch, read once, and applied to
// both the structure and the field set of a single payload.
func buildLayouts(s Settings) map[types.EventKind]Layout {
	layouts := make(map[types.EventKind]Layout, len(types.AllEventKinds))
	for _, kind := range types.AllEventKinds {
		layouts[kind] = Layout{
			Compact: toggleFor(kind, defaultCompact, s.CompactOverrides),
			Mention: toggleFor(kind, defaultMention, s.MentionOverrides),
		}
	}
	return layouts
}

func toggleFor(kind types.EventKind, defaults, overrides map[types.EventKind]bool) bool {
	if v, ok := overrides[kind]; ok {
		return v
	}
	return defaults[kind]
}

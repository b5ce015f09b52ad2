// Package notify provides the shared notification infrastructure used by all
// channel agents: template rendering, the agent registry, the dispatch
// fan-out, and delivery metrics. It centralizes the control flow that every
// channel follows so agents only contain channel-specific payload logic.
package notify

import (
	"context"
	"errors"

	"github.com/tidusjar/RequestPlex/internal/config"
	"github.com/tidusjar/RequestPlex/internal/templates"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// Renderer resolves a template for (channel, kind) and substitutes
// placeholders from the event and the static customization.
type Renderer struct {
	store         templates.Store
	customization config.CustomizationConfig
}

// NewRenderer creates a Renderer over the given template store.
func NewRenderer(store templates.Store, customization config.CustomizationConfig) *Renderer {
	return &Renderer{store: store, customization: customization}
}

// Render produces a fresh RenderedMessage for one dispatch call.
//
// A missing template row is treated identically to a disabled one: the
// result carries Disabled=true and the caller must skip delivery without
// building a channel payload. A store failure (not a missing row) is
// returned as an error for the agent to log and swallow.
//
// Image resolution order: event ExtraImage, then subject poster, then the
// template's image override.
func (r *Renderer) Render(ctx context.Context, channel types.ChannelKind, kind types.EventKind, event types.NotificationEvent) (types.RenderedMessage, error) {
	tmpl, err := r.store.Lookup(ctx, channel, kind)
	if err != nil {
		if errors.Is(err, templates.ErrNotConfigured) {
			return types.RenderedMessage{Disabled: true}, nil
		}
		return types.RenderedMessage{}, err
	}
	if !tmpl.Enabled {
		return types.RenderedMessage{Disabled: true}, nil
	}

	vals := templates.Values{
		ApplicationURL:   r.customization.ApplicationURL,
		IssueDescription: event.ExtraText,
	}
	poster := ""
	if event.Subject != nil {
		facts := types.ResolveSubject(event.Subject)
		poster = facts.Poster
		vals = templates.ValuesFromFacts(facts)
		vals.ApplicationURL = r.customization.ApplicationURL
		vals.IssueDescription = event.ExtraText
	}

	image := event.ExtraImage
	if image == "" {
		image = poster
	}
	if image == "" {
		image = tmpl.Image
	}

	return types.RenderedMessage{
		Subject: templates.Substitute(tmpl.Subject, vals),
		Body:    templates.Substitute(tmpl.Body, vals),
		Image:   image,
	}, nil
}

// QueueRetryBody builds the fixed fallback body for the AddedToQueue event,
// which bypasses templating entirely: it communicates an internal retry
// condition, not a user-facing request milestone. Returns the message text
// and the subject's poster. For TV requests both come from the parent series.
func QueueRetryBody(subject types.RequestSubject) (body, image string) {
	facts := types.ResolveSubject(subject)
	user := facts.RequestedUser.Alias
	if user == "" {
		user = facts.RequestedUser.Username
	}
	return "Hello! The user '" + user + "' has requested " + facts.Title +
		" but it could not be added. This has been added into the requests queue and will keep retrying", facts.Poster
}

// TestMessage is the canned body sent by every agent's Test entry point so
// operators can verify configuration without a real domain event.
const TestMessage = "This is a test from RequestPlex, if you can see this then we have successfully pushed a notification!"

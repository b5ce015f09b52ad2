package discord

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// Settings is the read-only per-dispatch snapshot for the Discord channel,
// supplied by the surrounding application's settings collaborator. It is
// never mutated by the agent.
type Settings struct {
	Enabled bool

	// WebhookURL is the full webhook endpoint copied from Discord, e.g.
	// "https://discord.com/api/webhooks/{id}/{token}".
	WebhookURL string `validate:"omitempty,url"`

	// Username overrides the webhook's display name, when set.
	Username string

	// CompactOverrides and MentionOverrides adjust the per-event-kind layout
	// defaults. Absent kinds keep the default.
	CompactOverrides map[types.EventKind]bool
	MentionOverrides map[types.EventKind]bool
}

// SettingsSource loads the settings snapshot for one dispatch call.
type SettingsSource func(ctx context.Context) (Settings, error)

// StaticSettings wraps a fixed Settings value in a SettingsSource.
func StaticSettings(s Settings) SettingsSource {
	return func(context.Context) (Settings, error) { return s, nil }
}

// webhookParts extracts the webhook ID and token from the configured URL.
// The token is the last path segment and the ID the one before it.
func (s Settings) webhookParts() (id string, token types.SecretString, err error) {
	u, err := url.Parse(s.WebhookURL)
	if err != nil {
		return "", "", fmt.Errorf("discord: malformed webhook url: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", fmt.Errorf("discord: webhook url %q has no id/token segments", s.WebhookURL)
	}
	id = segments[len(segments)-2]
	raw := segments[len(segments)-1]
	if id == "" || raw == "" {
		return "", "", fmt.Errorf("discord: webhook url %q has empty id or token", s.WebhookURL)
	}
	return id, types.SecretString(raw), nil
}

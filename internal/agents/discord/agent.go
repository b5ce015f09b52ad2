// Package discord implements the Discord channel agent. It turns a rendered
// message plus per-event-kind layout toggles into a rich-embed webhook
// payload. Request milestones produce a structured embed with an author
// block, deep links and a footer; issue events, the queue-retry notice and
// the operator test all use a plain-content body.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tidusjar/RequestPlex/internal/config"
	"github.com/tidusjar/RequestPlex/internal/external"
	"github.com/tidusjar/RequestPlex/internal/notify"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// longDateLayout renders the footer date, e.g. "Friday, 22 October 2021".
const longDateLayout = "Monday, 02 January 2006"

// eventIcons maps each request milestone to its author-block icon.
var eventIcons = map[types.EventKind]string{
	types.EventNewRequest:       "https://i.imgur.com/EPuxVav.png",
	types.EventRequestApproved:  "https://i.imgur.com/sodXDGW.png",
	types.EventRequestDeclined:  "https://i.imgur.com/i1X39I2.png",
	types.EventRequestAvailable: "https://i.imgur.com/k4bX9KM.png",
}

// authorLinkKinds lists the kinds whose author block deep-links back to the
// application's requests page when a base URL is configured.
var authorLinkKinds = map[types.EventKind]bool{
	types.EventNewRequest:       true,
	types.EventRequestAvailable: true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Agent delivers notifications to a Discord webhook.
type Agent struct {
	client        *external.DiscordClient
	renderer      *notify.Renderer
	settings      SettingsSource
	customization config.CustomizationConfig
	logger        types.Logger
}

var _ notify.Agent = (*Agent)(nil)

// New creates a Discord Agent.
func New(client *external.DiscordClient, renderer *notify.Renderer, settings SettingsSource, customization config.CustomizationConfig, logger types.Logger) *Agent {
	return &Agent{
		client:        client,
		renderer:      renderer,
		settings:      settings,
		customization: customization,
		logger:        logger.With("channel", string(types.ChannelDiscord)),
	}
}

// Kind identifies the channel this agent serves.
func (a *Agent) Kind() types.ChannelKind { return types.ChannelDiscord }

// Notify runs the full pipeline for one event: load the settings snapshot,
// validate, render, build the payload and send. Configuration problems and
// disabled templates log at informational level and return
// notify.ErrSkipped so the dispatcher records a skip; only genuine delivery
// failures are returned as errors.
func (a *Agent) Notify(ctx context.Context, event types.NotificationEvent) error {
	settings, err := a.settings(ctx)
	if err != nil {
		return fmt.Errorf("discord: loading settings: %w", err)
	}

	// The queue-retry notice communicates an internal condition, not a
	// user-facing milestone: it bypasses templating and full validation
	// beyond the channel-enabled check.
	if event.Kind == types.EventAddedToQueue {
		if !settings.Enabled {
			return notify.ErrSkipped
		}
		body, image := notify.QueueRetryBody(event.Subject)
		return a.sendPlain(ctx, settings, body, image)
	}

	if !settings.Enabled {
		a.logger.Info("channel disabled, skipping",
			"event_kind", string(event.Kind),
			"code", string(types.ErrCodeConfigChannelDisabled),
		)
		return notify.ErrSkipped
	}
	if !a.validConfiguration(settings) {
		a.logger.Info("invalid channel settings, skipping",
			"event_kind", string(event.Kind),
			"code", string(types.ErrCodeConfigInvalidSettings),
		)
		return notify.ErrSkipped
	}

	switch event.Kind {
	case types.EventNewRequest, types.EventRequestApproved, types.EventRequestDeclined, types.EventRequestAvailable:
		return a.sendEmbed(ctx, settings, event)
	case types.EventIssueCreated, types.EventIssueComment, types.EventIssueResolved:
		msg, err := a.renderer.Render(ctx, types.ChannelDiscord, event.Kind, event)
		if err != nil {
			return err
		}
		if msg.Disabled {
			a.logSkippedTemplate(event.Kind)
			return notify.ErrSkipped
		}
		return a.sendPlain(ctx, settings, msg.Body, msg.Image)
	case types.EventTest:
		return a.sendPlain(ctx, settings, notify.TestMessage, "")
	default:
		a.logger.Warn("unhandled event kind", "event_kind", string(event.Kind))
		return notify.ErrSkipped
	}
}

// validConfiguration reports whether the snapshot names a sendable webhook.
// False means skip: no render, no network call, no error raised.
func (a *Agent) validConfiguration(s Settings) bool {
	if s.WebhookURL == "" {
		return false
	}
	if err := validate.Struct(s); err != nil {
		return false
	}
	_, _, err := s.webhookParts()
	return err == nil
}

func (a *Agent) logSkippedTemplate(kind types.EventKind) {
	a.logger.Info("template disabled, skipping",
		"event_kind", string(kind),
		"code", string(types.ErrCodeTemplateNotConfigured),
	)
}

// sendEmbed handles the request milestones: render the template, build the
// rich embed and POST it.
func (a *Agent) sendEmbed(ctx context.Context, settings Settings, event types.NotificationEvent) error {
	msg, err := a.renderer.Render(ctx, types.ChannelDiscord, event.Kind, event)
	if err != nil {
		return err
	}
	if msg.Disabled {
		a.logSkippedTemplate(event.Kind)
		return notify.ErrSkipped
	}

	embed := a.buildEmbed(event.Kind, event.Subject, msg, buildLayouts(settings)[event.Kind])
	body := external.DiscordWebhookBody{
		Username: settings.Username,
		Embeds:   []external.DiscordEmbed{embed},
	}

	id, token, err := settings.webhookParts()
	if err != nil {
		return err
	}
	return a.client.SendMessage(ctx, id, token, body)
}

// sendPlain posts a plain-content body with an optional image-only embed.
// Used by issue events, the queue-retry notice and the operator test.
func (a *Agent) sendPlain(ctx context.Context, settings Settings, body, image string) error {
	payload := external.DiscordWebhookBody{
		Content:  body,
		Username: settings.Username,
	}
	if image != "" {
		payload.Embeds = []external.DiscordEmbed{
			{Image: &external.DiscordImage{URL: image}},
		}
	}

	id, token, err := settings.webhookParts()
	if err != nil {
		return err
	}
	return a.client.SendMessage(ctx, id, token, payload)
}

// buildEmbed assembles the rich embed for a request milestone. The layout
// toggles and the requester identity are each decided once here and applied
// consistently to the whole payload: compact controls both the image slot and
// the field set, and the same display name feeds the footer that the mention
// decision is keyed to.
func (a *Agent) buildEmbed(kind types.EventKind, subject types.RequestSubject, msg types.RenderedMessage, layout Layout) external.DiscordEmbed {
	facts := types.ResolveSubject(subject)
	displayName := facts.RequestedUser.DisplayName(a.customization.UseAliasAsDisplayName)

	author := &external.DiscordAuthor{
		Name:    msg.Subject,
		IconURL: eventIcons[kind],
	}
	if authorLinkKinds[kind] && a.customization.ApplicationURL != "" {
		author.URL = a.customization.ApplicationURL + "requests"
	}

	title := facts.Title
	if facts.ReleaseYear != 0 {
		title = fmt.Sprintf("%s (%d)", facts.Title, facts.ReleaseYear)
	}

	embed := external.DiscordEmbed{
		Author: author,
		Title:  title,
		URL:    facts.DetailURL,
	}

	if layout.Compact {
		if msg.Image != "" {
			embed.Thumbnail = &external.DiscordImage{URL: msg.Image}
		}
	} else {
		if msg.Image != "" {
			embed.Image = &external.DiscordImage{URL: msg.Image}
		}
		embed.Description = msg.Body
		if facts.Overview != "" {
			embed.Fields = append(embed.Fields, external.DiscordField{Name: "Overview", Value: facts.Overview})
		}
	}

	// The mention field shows the raw alias so a "<@id>" alias pings the
	// user. It only appears when the global alias switch is on, which keeps
	// it the same identity the footer shows.
	if layout.Mention && a.customization.UseAliasAsDisplayName && facts.RequestedUser.Alias != "" {
		embed.Fields = append(embed.Fields, external.DiscordField{Name: "Mentions", Value: facts.RequestedUser.Alias})
	}

	embed.Footer = &external.DiscordFooter{
		Text: fmt.Sprintf("Requested by %s on %s", displayName, formatLongDate(facts.RequestedDate)),
	}
	return embed
}

func formatLongDate(t time.Time) string {
	if t.IsZero() {
		return "an unknown date"
	}
	return t.Format(longDateLayout)
}

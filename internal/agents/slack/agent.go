// Package slack implements the Slack channel agent. Request milestones render
// into an attachment with a title deep link and the poster image; issue
// events, the queue-retry notice and the operator test send plain text.
package slack

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tidusjar/RequestPlex/internal/external"
	"github.com/tidusjar/RequestPlex/internal/notify"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// Settings is the read-only per-dispatch snapshot for the Slack channel.
type Settings struct {
	Enabled bool

	// WebhookURL is a Slack incoming-webhook endpoint
	// (https://hooks.slack.com/services/...).
	WebhookURL string `validate:"omitempty,url"`

	// Channel optionally overrides the webhook's default channel.
	Channel string

	// Username and IconEmoji override the posting identity.
	Username  string
	IconEmoji string
}

// SettingsSource loads the settings snapshot for one dispatch call.
type SettingsSource func(ctx context.Context) (Settings, error)

// StaticSettings wraps a fixed Settings value in a SettingsSource.
func StaticSettings(s Settings) SettingsSource {
	return func(context.Context) (Settings, error) { return s, nil }
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Agent delivers notifications to a Slack incoming webhook.
type Agent struct {
	client   *external.SlackClient
	renderer *notify.Renderer
	settings SettingsSource
	logger   types.Logger
}

var _ notify.Agent = (*Agent)(nil)

// New creates a Slack Agent.
func New(client *external.SlackClient, renderer *notify.Renderer, settings SettingsSource, logger types.Logger) *Agent {
	return &Agent{
		client:   client,
		renderer: renderer,
		settings: settings,
		logger:   logger.With("channel", string(types.ChannelSlack)),
	}
}

// Kind identifies the channel this agent serves.
func (a *Agent) Kind() types.ChannelKind { return types.ChannelSlack }

// Notify runs the pipeline for one event: snapshot, validate, render, build,
// send. Skips log at informational level and return notify.ErrSkipped; only
// delivery failures are returned as errors.
func (a *Agent) Notify(ctx context.Context, event types.NotificationEvent) error {
	settings, err := a.settings(ctx)
	if err != nil {
		return fmt.Errorf("slack: loading settings: %w", err)
	}

	if event.Kind == types.EventAddedToQueue {
		if !settings.Enabled {
			return notify.ErrSkipped
		}
		body, image := notify.QueueRetryBody(event.Subject)
		return a.client.SendMessage(ctx, settings.WebhookURL, a.buildMessage(settings, body, "", "", image))
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

	if event.Kind == types.EventTest {
		return a.client.SendMessage(ctx, settings.WebhookURL, a.buildMessage(settings, notify.TestMessage, "", "", ""))
	}

	msg, err := a.renderer.Render(ctx, types.ChannelSlack, event.Kind, event)
	if err != nil {
		return err
	}
	if msg.Disabled {
		a.logger.Info("template disabled, skipping",
			"event_kind", string(event.Kind),
			"code", string(types.ErrCodeTemplateNotConfigured),
		)
		return notify.ErrSkipped
	}

	title, titleURL := "", ""
	if event.Subject != nil {
		facts := types.ResolveSubject(event.Subject)
		title = facts.Title
		if facts.ReleaseYear != 0 {
			title = fmt.Sprintf("%s (%d)", facts.Title, facts.ReleaseYear)
		}
		titleURL = facts.DetailURL
	}

	return a.client.SendMessage(ctx, settings.WebhookURL, a.buildMessage(settings, msg.Body, title, titleURL, msg.Image))
}

func (a *Agent) validConfiguration(s Settings) bool {
	if s.WebhookURL == "" {
		return false
	}
	return validate.Struct(s) == nil
}

// buildMessage assembles the webhook payload. The attachment only appears
// when there is rich content to carry.
func (a *Agent) buildMessage(settings Settings, text, title, titleURL, image string) external.SlackMessage {
	msg := external.SlackMessage{
		Text:      text,
		Channel:   settings.Channel,
		Username:  settings.Username,
		IconEmoji: settings.IconEmoji,
	}
	if title != "" || image != "" {
		msg.Attachments = []external.SlackAttachment{{
			Fallback: text,
			Title:    title,
			TitleURL: titleURL,
			ImageURL: image,
		}}
	}
	return msg
}

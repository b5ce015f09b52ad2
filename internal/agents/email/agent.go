// Package email implements the email channel agent over the SendGrid mail
// API. The rendered subject becomes the mail subject and the body is wrapped
// in a minimal HTML shell with the resolved image inlined beneath it.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/go-playground/validator/v10"

	"github.com/tidusjar/RequestPlex/internal/external"
	"github.com/tidusjar/RequestPlex/internal/notify"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// Settings is the read-only per-dispatch snapshot for the email channel.
type Settings struct {
	Enabled bool

	SenderAddress string `validate:"omitempty,email"`
	SenderName    string

	// RecipientAddress receives every notification. Per-user recipient
	// resolution is owned by the surrounding application.
	RecipientAddress string `validate:"omitempty,email"`
}

// SettingsSource loads the settings snapshot for one dispatch call.
type SettingsSource func(ctx context.Context) (Settings, error)

// StaticSettings wraps a fixed Settings value in a SettingsSource.
func StaticSettings(s Settings) SettingsSource {
	return func(context.Context) (Settings, error) { return s, nil }
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Agent delivers notifications by email.
type Agent struct {
	client   *external.SendGridClient
	renderer *notify.Renderer
	settings SettingsSource
	logger   types.Logger
}

var _ notify.Agent = (*Agent)(nil)

// New creates an email Agent.
func New(client *external.SendGridClient, renderer *notify.Renderer, settings SettingsSource, logger types.Logger) *Agent {
	return &Agent{
		client:   client,
		renderer: renderer,
		settings: settings,
		logger:   logger.With("channel", string(types.ChannelEmail)),
	}
}

// Kind identifies the channel this agent serves.
func (a *Agent) Kind() types.ChannelKind { return types.ChannelEmail }

// Notify runs the pipeline for one event. Email has no layout toggles; the
// subject/body pair comes straight from the template.
func (a *Agent) Notify(ctx context.Context, event types.NotificationEvent) error {
	settings, err := a.settings(ctx)
	if err != nil {
		return fmt.Errorf("email: loading settings: %w", err)
	}

	if event.Kind == types.EventAddedToQueue {
		if !settings.Enabled {
			return notify.ErrSkipped
		}
		body, image := notify.QueueRetryBody(event.Subject)
		return a.send(ctx, settings, "A request could not be added", body, image)
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
		return a.send(ctx, settings, "Test Notification", notify.TestMessage, "")
	}

	msg, err := a.renderer.Render(ctx, types.ChannelEmail, event.Kind, event)
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

	return a.send(ctx, settings, msg.Subject, msg.Body, msg.Image)
}

func (a *Agent) validConfiguration(s Settings) bool {
	if s.SenderAddress == "" || s.RecipientAddress == "" {
		return false
	}
	return validate.Struct(s) == nil
}

func (a *Agent) send(ctx context.Context, settings Settings, subject, body, image string) error {
	return a.client.Send(ctx,
		external.MailAddress{Email: settings.SenderAddress, Name: settings.SenderName},
		external.MailAddress{Email: settings.RecipientAddress},
		subject,
		[]external.MailContent{{Type: "text/html", Value: htmlBody(body, image)}},
	)
}

// htmlBody wraps plain body text in a minimal HTML shell, escaping the text
// and appending the image when present.
func htmlBody(body, image string) string {
	out := "<p>" + html.EscapeString(body) + "</p>"
	if image != "" {
		out += fmt.Sprintf(`<p><img src=%q alt=""/></p>`, image)
	}
	return out
}

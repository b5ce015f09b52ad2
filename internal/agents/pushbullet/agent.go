// Package pushbullet implements the mobile-push channel agent. Every
// notification becomes a note push; request milestones carry the subject's
// deep link so tapping the push opens the title's detail page.
package pushbullet

import (
	"context"
	"fmt"

	"github.com/tidusjar/RequestPlex/internal/external"
	"github.com/tidusjar/RequestPlex/internal/notify"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// Settings is the read-only per-dispatch snapshot for the Pushbullet channel.
// The access token lives in the provider client, not here: it is process
// configuration, while this snapshot carries the per-dispatch preferences.
type Settings struct {
	Enabled bool

	// ChannelTag optionally pushes to a Pushbullet channel instead of the
	// token owner's devices.
	ChannelTag string
}

// SettingsSource loads the settings snapshot for one dispatch call.
type SettingsSource func(ctx context.Context) (Settings, error)

// StaticSettings wraps a fixed Settings value in a SettingsSource.
func StaticSettings(s Settings) SettingsSource {
	return func(context.Context) (Settings, error) { return s, nil }
}

// Agent delivers notifications as Pushbullet note pushes.
type Agent struct {
	client   *external.PushbulletClient
	renderer *notify.Renderer
	settings SettingsSource
	logger   types.Logger
}

var _ notify.Agent = (*Agent)(nil)

// New creates a Pushbullet Agent.
func New(client *external.PushbulletClient, renderer *notify.Renderer, settings SettingsSource, logger types.Logger) *Agent {
	return &Agent{
		client:   client,
		renderer: renderer,
		settings: settings,
		logger:   logger.With("channel", string(types.ChannelPushbullet)),
	}
}

// Kind identifies the channel this agent serves.
func (a *Agent) Kind() types.ChannelKind { return types.ChannelPushbullet }

// Notify runs the pipeline for one event. Pushes have no image slot, so the
// resolved image is dropped and only the text and deep link survive.
func (a *Agent) Notify(ctx context.Context, event types.NotificationEvent) error {
	settings, err := a.settings(ctx)
	if err != nil {
		return fmt.Errorf("pushbullet: loading settings: %w", err)
	}
	if !settings.Enabled {
		if event.Kind != types.EventAddedToQueue {
			a.logger.Info("channel disabled, skipping",
				"event_kind", string(event.Kind),
				"code", string(types.ErrCodeConfigChannelDisabled),
			)
		}
		return notify.ErrSkipped
	}

	if event.Kind == types.EventAddedToQueue {
		body, _ := notify.QueueRetryBody(event.Subject)
		return a.push(ctx, settings, "Request Queued", body, "")
	}

	if event.Kind == types.EventTest {
		return a.push(ctx, settings, "Test Notification", notify.TestMessage, "")
	}

	msg, err := a.renderer.Render(ctx, types.ChannelPushbullet, event.Kind, event)
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

	url := ""
	if event.Subject != nil {
		url = types.ResolveSubject(event.Subject).DetailURL
	}
	return a.push(ctx, settings, msg.Subject, msg.Body, url)
}

func (a *Agent) push(ctx context.Context, settings Settings, title, body, url string) error {
	return a.client.Push(ctx, external.PushbulletPush{
		Type:       "note",
		Title:      title,
		Body:       body,
		URL:        url,
		ChannelTag: settings.ChannelTag,
	})
}

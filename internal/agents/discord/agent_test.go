package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidusjar/RequestPlex/internal/config"
	"github.com/tidusjar/RequestPlex/internal/external"
	"github.com/tidusjar/RequestPlex/internal/notify"
	"github.com/tidusjar/RequestPlex/internal/templates"
	"github.com/tidusjar/RequestPlex/internal/types"
)

// captureLogger records log lines by level so tests can assert on
// observability without parsing slog output.
type captureLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (l *captureLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *captureLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *captureLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *captureLogger) With(_ ...any) types.Logger { return l }

// webhookRecorder captures every webhook execute call made during a test.
type webhookRecorder struct {
	mu     sync.Mutex
	status int
	bodies []external.DiscordWebhookBody
}

func (r *webhookRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		var body external.DiscordWebhookBody
		_ = json.Unmarshal(data, &body)

		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		status := r.status
		r.mu.Unlock()

		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	}
}

func (r *webhookRecorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func (r *webhookRecorder) last(t *testing.T) external.DiscordWebhookBody {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.bodies)
	return r.bodies[len(r.bodies)-1]
}

func discardLogger() types.Logger {
	return types.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func enabledSettings() Settings {
	return Settings{
		Enabled:    true,
		WebhookURL: "https://discord.com/api/webhooks/123/tok",
		Username:   "RequestPlex",
	}
}

type agentFixture struct {
	agent    *Agent
	recorder *webhookRecorder
	logs     *captureLogger
}

func newFixture(t *testing.T, settings Settings, customization config.CustomizationConfig, store templates.Store) agentFixture {
	t.Helper()
	recorder := &webhookRecorder{}
	srv := httptest.NewServer(recorder.handler())
	t.Cleanup(srv.Close)

	base := external.NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"discord-test",
		external.RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		"RequestPlex-Test/1.0",
		external.WithSleepFunc(func(time.Duration) {}),
	)
	client := external.NewDiscordClient(base, external.DiscordClientConfig{BaseURL: srv.URL, Logger: discardLogger()})

	logs := &captureLogger{}
	renderer := notify.NewRenderer(store, customization)
	return agentFixture{
		agent:    New(client, renderer, StaticSettings(settings), customization, logs),
		recorder: recorder,
		logs:     logs,
	}
}

func duneMovie() types.MovieRequest {
	return types.MovieRequest{
		Title:       "Dune",
		Overview:    "Paul Atreides leads nomadic tribes in a battle for Arrakis.",
		PosterPath:  "http://x/p.jpg",
		ReleaseDate: time.Date(2021, 10, 22, 0, 0, 0, 0, time.UTC),
		ImdbID:      "tt1160419",
		RequestedUser: types.RequestedUser{
			Username: "jamie",
			Alias:    "Jamie R",
		},
		RequestedDate: time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewRequestMovieFullLayout(t *testing.T) {
	settings := enabledSettings()
	settings.CompactOverrides = map[types.EventKind]bool{types.EventNewRequest: false}
	customization := config.CustomizationConfig{
		ApplicationURL:        "https://requests.example.com/",
		UseAliasAsDisplayName: true,
	}
	f := newFixture(t, settings, customization, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	require.NoError(t, err)

	body := f.recorder.last(t)
	assert.Equal(t, "RequestPlex", body.Username)
	require.Len(t, body.Embeds, 1)

	embed := body.Embeds[0]
	assert.Equal(t, "Dune (2021)", embed.Title)
	assert.Contains(t, embed.URL, "tt1160419")
	assert.True(t, strings.HasPrefix(embed.URL, types.IMDBBaseURL))
	require.NotNil(t, embed.Image)
	assert.Equal(t, "http://x/p.jpg", embed.Image.URL)
	assert.Nil(t, embed.Thumbnail)
	assert.Equal(t, "Hello! The user 'jamie' has requested the movie 'Dune'! Please log in to view it.", embed.Description)

	require.NotNil(t, embed.Author)
	assert.Equal(t, "New Request!", embed.Author.Name)
	assert.Equal(t, "https://i.imgur.com/EPuxVav.png", embed.Author.IconURL)
	assert.Equal(t, "https://requests.example.com/requests", embed.Author.URL)

	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Requested by Jamie R on Friday, 01 October 2021", embed.Footer.Text)
}

func TestCompactLayoutUsesThumbnailOnly(t *testing.T) {
	// NewRequest is compact by default.
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	require.NoError(t, err)

	embed := f.recorder.last(t).Embeds[0]
	assert.Nil(t, embed.Image)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "http://x/p.jpg", embed.Thumbnail.URL)
	assert.Empty(t, embed.Description)
	for _, field := range embed.Fields {
		assert.NotEqual(t, "Overview", field.Name)
	}
}

func TestDisabledChannelPerformsNoCalls(t *testing.T) {
	settings := enabledSettings()
	settings.Enabled = false
	f := newFixture(t, settings, config.CustomizationConfig{}, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	assert.ErrorIs(t, err, notify.ErrSkipped)

	assert.Equal(t, 0, f.recorder.calls())
	assert.Len(t, f.logs.infos, 1)
}

func TestBlankWebhookPerformsNoCalls(t *testing.T) {
	settings := enabledSettings()
	settings.WebhookURL = ""
	f := newFixture(t, settings, config.CustomizationConfig{}, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	assert.ErrorIs(t, err, notify.ErrSkipped)
	assert.Equal(t, 0, f.recorder.calls())
}

func TestMalformedWebhookPerformsNoCalls(t *testing.T) {
	settings := enabledSettings()
	settings.WebhookURL = "https://discord.com/nothing"
	f := newFixture(t, settings, config.CustomizationConfig{}, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	assert.ErrorIs(t, err, notify.ErrSkipped)
	assert.Equal(t, 0, f.recorder.calls())
}

func TestDisabledTemplateSkipsDelivery(t *testing.T) {
	store := templates.NewMemoryStore(templates.Template{
		Channel: types.ChannelDiscord,
		Kind:    types.EventNewRequest,
		Enabled: false,
	})
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, store)

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	assert.ErrorIs(t, err, notify.ErrSkipped)
	assert.Equal(t, 0, f.recorder.calls())
	assert.Len(t, f.logs.infos, 1)
}

func TestAddedToQueueBypassesTemplates(t *testing.T) {
	// An empty store proves no template lookup happens on this path.
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewEmptyMemoryStore())

	movie := duneMovie()
	movie.RequestedUser.Alias = "Jo"
	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventAddedToQueue, movie))
	require.NoError(t, err)

	body := f.recorder.last(t)
	assert.Equal(t, "Hello! The user 'Jo' has requested Dune but it could not be added. This has been added into the requests queue and will keep retrying", body.Content)
	require.Len(t, body.Embeds, 1)
	require.NotNil(t, body.Embeds[0].Image)
	assert.Equal(t, "http://x/p.jpg", body.Embeds[0].Image.URL)
}

func TestDeliveryFailureIsReturnedNotPanicked(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())
	f.recorder.status = http.StatusInternalServerError

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))
	assert.Error(t, err)
}

func TestDispatchSwallowsDiscordFailure(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())
	f.recorder.status = http.StatusInternalServerError

	logs := &captureLogger{}
	d := notify.NewDispatcher(notify.NewRegistry(f.agent), notify.NewCounterMetrics(), logs)

	// Must return normally; the failure is observable only through the log.
	d.Dispatch(context.Background(), types.NewRequestEvent(types.EventNewRequest, duneMovie()))

	assert.Len(t, logs.errors, 1)
}

func TestMentionFieldMatchesFooterIdentity(t *testing.T) {
	customization := config.CustomizationConfig{UseAliasAsDisplayName: true}
	f := newFixture(t, enabledSettings(), customization, templates.NewMemoryStore())

	movie := duneMovie()
	movie.RequestedUser.Alias = "<@9001>"
	// RequestAvailable mentions by default and is full layout by default.
	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventRequestAvailable, movie))
	require.NoError(t, err)

	embed := f.recorder.last(t).Embeds[0]
	var mention string
	for _, field := range embed.Fields {
		if field.Name == "Mentions" {
			mention = field.Value
		}
	}
	assert.Equal(t, "<@9001>", mention)
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "Requested by <@9001> on")
}

func TestAliasSwitchOffSuppressesMentionAndUsesUsername(t *testing.T) {
	customization := config.CustomizationConfig{UseAliasAsDisplayName: false}
	f := newFixture(t, enabledSettings(), customization, templates.NewMemoryStore())

	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventRequestAvailable, duneMovie()))
	require.NoError(t, err)

	embed := f.recorder.last(t).Embeds[0]
	for _, field := range embed.Fields {
		assert.NotEqual(t, "Mentions", field.Name)
	}
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "Requested by jamie on")
}

func TestTvSubjectLinksToTVDB(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())

	episode := types.TvEpisodeRequest{
		RequestedUser: types.RequestedUser{Username: "sam"},
		RequestedDate: time.Date(2022, 3, 5, 0, 0, 0, 0, time.UTC),
		Series: types.SeriesInfo{
			Title:       "Severance",
			Overview:    "Employees undergo a procedure splitting their memories.",
			PosterPath:  "http://x/severance.jpg",
			ReleaseDate: time.Date(2022, 2, 18, 0, 0, 0, 0, time.UTC),
			TvDbID:      371980,
		},
	}
	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventRequestAvailable, episode))
	require.NoError(t, err)

	embed := f.recorder.last(t).Embeds[0]
	assert.Equal(t, "Severance (2022)", embed.Title)
	assert.True(t, strings.HasPrefix(embed.URL, types.TVDBBaseURL))
	assert.Contains(t, embed.URL, "371980")
}

func TestUnknownYearOmitsParenthetical(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())

	movie := duneMovie()
	movie.ReleaseDate = time.Time{}
	err := f.agent.Notify(context.Background(), types.NewRequestEvent(types.EventNewRequest, movie))
	require.NoError(t, err)

	assert.Equal(t, "Dune", f.recorder.last(t).Embeds[0].Title)
}

func TestTestEventSendsCannedMessage(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewEmptyMemoryStore())

	err := f.agent.Notify(context.Background(), types.NotificationEvent{Kind: types.EventTest})
	require.NoError(t, err)

	body := f.recorder.last(t)
	assert.Equal(t, notify.TestMessage, body.Content)
	assert.Empty(t, body.Embeds)
}

func TestIssueEventSendsPlainContent(t *testing.T) {
	f := newFixture(t, enabledSettings(), config.CustomizationConfig{}, templates.NewMemoryStore())

	event := types.NewIssueEvent(types.EventIssueCreated, "Subtitles out of sync on episode 3", "http://x/issue.jpg")
	err := f.agent.Notify(context.Background(), event)
	require.NoError(t, err)

	body := f.recorder.last(t)
	assert.Equal(t, "A new issue has been reported: Subtitles out of sync on episode 3", body.Content)
	require.Len(t, body.Embeds, 1)
	require.NotNil(t, body.Embeds[0].Image)
	assert.Equal(t, "http://x/issue.jpg", body.Embeds[0].Image.URL)
}

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// --- Slack wire types (incoming webhook payload) ---

// SlackMessage is the JSON body POSTed to a Slack incoming webhook.
type SlackMessage struct {
	Text        string            `json:"text"`
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment carries the rich part of a Slack message.
type SlackAttachment struct {
	Fallback string `json:"fallback,omitempty"`
	Pretext  string `json:"pretext,omitempty"`
	Title    string `json:"title,omitempty"`
	TitleURL string `json:"title_link,omitempty"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Footer   string `json:"footer,omitempty"`
}

// SlackClient posts messages to a Slack incoming webhook URL through the
// BaseClient.
type SlackClient struct {
	base   *BaseClient
	logger types.Logger
}

// NewSlackClient creates a SlackClient on top of the given BaseClient.
func NewSlackClient(base *BaseClient, logger types.Logger) *SlackClient {
	return &SlackClient{base: base, logger: logger}
}

// SendMessage POSTs the message to the webhook URL. Slack's incoming
// webhooks answer HTTP 200 with the literal body "ok" on success and a
// plaintext error token (e.g. "channel_not_found") on soft failures, which
// still must be treated as delivery errors.
func (c *SlackClient) SendMessage(ctx context.Context, webhookURL string, msg SlackMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode slack payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build slack request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body := readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("slack webhook rejected message",
			"status", resp.StatusCode,
			"body", truncateBody(body),
		)
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("slack returned %d: %s", resp.StatusCode, truncateBody(body)),
			nil,
		)
	}

	if text := strings.TrimSpace(string(body)); text != "" && text != "ok" {
		c.logger.Warn("slack webhook soft failure", "body", truncateBody(body))
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("slack soft failure: %s", truncateBody(body)),
			nil,
		)
	}

	return nil
}

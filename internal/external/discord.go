package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// discordAPIBase is the default Discord webhook API base URL. Overridable in
// tests via DiscordClientConfig.BaseURL.
const discordAPIBase = "https://discord.com/api/webhooks"

// --- Discord wire types (webhook execute payload) ---

// DiscordWebhookBody is the top-level JSON body POSTed to a Discord webhook.
type DiscordWebhookBody struct {
	Content  string         `json:"content,omitempty"`
	Username string         `json:"username,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed is a rich embed within a webhook message.
type DiscordEmbed struct {
	Author      *DiscordAuthor `json:"author,omitempty"`
	Title       string         `json:"title,omitempty"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Image       *DiscordImage  `json:"image,omitempty"`
	Thumbnail   *DiscordImage  `json:"thumbnail,omitempty"`
	Fields      []DiscordField `json:"fields,omitempty"`
	Footer      *DiscordFooter `json:"footer,omitempty"`
}

// DiscordAuthor is the author block at the top of an embed.
type DiscordAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// DiscordImage wraps an image or thumbnail URL.
type DiscordImage struct {
	URL string `json:"url"`
}

// DiscordField is a name/value pair rendered in the embed body.
type DiscordField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DiscordFooter is the footer line of an embed.
type DiscordFooter struct {
	Text string `json:"text"`
}

// DiscordClientConfig holds the configuration for creating a DiscordClient.
type DiscordClientConfig struct {
	BaseURL string // Override for testing; defaults to discordAPIBase
	Logger  types.Logger
}

// DiscordClient executes Discord webhooks through the BaseClient so webhook
// POSTs get the shared breaker/retry behavior.
type DiscordClient struct {
	base    *BaseClient
	baseURL string
	logger  types.Logger
}

// NewDiscordClient creates a DiscordClient on top of the given BaseClient.
func NewDiscordClient(base *BaseClient, cfg DiscordClientConfig) *DiscordClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = discordAPIBase
	}
	return &DiscordClient{
		base:    base,
		baseURL: baseURL,
		logger:  cfg.Logger,
	}
}

// SendMessage POSTs a webhook body to /{webhookID}/{token}. Discord answers
// 204 No Content on success. Non-2xx responses map to a delivery AppError
// carrying a truncated response body for the logs.
func (c *DiscordClient) SendMessage(ctx context.Context, webhookID string, token types.SecretString, body DiscordWebhookBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode discord payload", err)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, webhookID, token.Unmask())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build discord request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody := readBody(resp)
		c.logger.Warn("discord webhook rejected message",
			"status", resp.StatusCode,
			"body", truncateBody(respBody),
		)
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("discord returned %d: %s", resp.StatusCode, truncateBody(respBody)),
			nil,
		)
	}

	return nil
}

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// pushbulletAPIBase is the default Pushbullet API base URL. Overridable in
// tests via PushbulletClientConfig.BaseURL.
const pushbulletAPIBase = "https://api.pushbullet.com"

// PushbulletPush is a note push. URL, when set, turns the push into a link.
type PushbulletPush struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	URL        string `json:"url,omitempty"`
	ChannelTag string `json:"channel_tag,omitempty"`
}

// PushbulletClientConfig holds the configuration for creating a
// PushbulletClient.
type PushbulletClientConfig struct {
	AccessToken types.SecretString
	BaseURL     string // Override for testing; defaults to pushbulletAPIBase
	Logger      types.Logger
}

// PushbulletClient sends pushes through the Pushbullet v2 API via the
// BaseClient.
type PushbulletClient struct {
	base        *BaseClient
	accessToken types.SecretString
	baseURL     string
	logger      types.Logger
}

// NewPushbulletClient creates a new PushbulletClient.
func NewPushbulletClient(base *BaseClient, cfg PushbulletClientConfig) *PushbulletClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pushbulletAPIBase
	}
	return &PushbulletClient{
		base:        base,
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		logger:      cfg.Logger,
	}
}

// Push submits one note push.
func (c *PushbulletClient) Push(ctx context.Context, push PushbulletPush) error {
	payload, err := json.Marshal(push)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode push payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/pushes", bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build push request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Access-Token", c.accessToken.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody := readBody(resp)
		c.logger.Warn("pushbullet rejected push",
			"status", resp.StatusCode,
			"body", truncateBody(respBody),
		)
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("pushbullet returned %d: %s", resp.StatusCode, truncateBody(respBody)),
			nil,
		)
	}

	return nil
}

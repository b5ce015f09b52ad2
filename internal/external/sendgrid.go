package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// sendGridAPIBase is the default SendGrid API base URL. Overridable in tests
// via SendGridClientConfig.BaseURL.
const sendGridAPIBase = "https://api.sendgrid.com"

// MailAddress is a name/address pair in a SendGrid payload.
type MailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// MailContent is one MIME part of the message body.
type MailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// mailPersonalization groups the recipients of one send.
type mailPersonalization struct {
	To []MailAddress `json:"to"`
}

// mailSendRequest is the SendGrid v3 mail-send body.
type mailSendRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             MailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []MailContent         `json:"content"`
}

// SendGridClientConfig holds the configuration for creating a SendGridClient.
type SendGridClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to sendGridAPIBase
	Logger  types.Logger
}

// SendGridClient sends mail through the SendGrid v3 Mail Send API via the
// BaseClient, inheriting the breaker/retry behavior and making testing with
// httptest straightforward.
type SendGridClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  types.Logger
}

// NewSendGridClient creates a new SendGridClient.
func NewSendGridClient(base *BaseClient, cfg SendGridClientConfig) *SendGridClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sendGridAPIBase
	}
	return &SendGridClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		logger:  cfg.Logger,
	}
}

// Send submits one message. SendGrid answers 202 Accepted on success.
func (c *SendGridClient) Send(ctx context.Context, from MailAddress, to MailAddress, subject string, content []MailContent) error {
	body := mailSendRequest{
		Personalizations: []mailPersonalization{{To: []MailAddress{to}}},
		From:             from,
		Subject:          subject,
		Content:          content,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode mail payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build mail request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody := readBody(resp)
		c.logger.Warn("sendgrid rejected message",
			"status", resp.StatusCode,
			"body", truncateBody(respBody),
		)
		return types.NewAppError(
			types.ErrCodeDeliveryFailed,
			fmt.Sprintf("sendgrid returned %d: %s", resp.StatusCode, truncateBody(respBody)),
			nil,
		)
	}

	return nil
}

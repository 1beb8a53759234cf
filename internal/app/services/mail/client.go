package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zerium/propertyd/pkg/logger"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Client sends transactional email through an HTTP email API.
type Client struct {
	client   *http.Client
	endpoint string
	apiKey   string
	from     string
	log      *logger.Logger
}

// New constructs a mail client. endpoint may be empty to use the default API.
func New(client *http.Client, endpoint, apiKey, from string, log *logger.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("mail api key required")
	}
	if from == "" {
		return nil, fmt.Errorf("mail sender address required")
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("mail")
	}
	return &Client{client: client, endpoint: endpoint, apiKey: apiKey, from: from, log: log}, nil
}

// Send delivers a single HTML email.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    c.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail service status %d", resp.StatusCode)
	}

	c.log.WithField("to", to).Info("email sent")
	return nil
}

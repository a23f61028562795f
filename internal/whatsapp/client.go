// Package whatsapp sends messages through the Twilio WhatsApp REST API.
// The send is always best-effort for callers: it runs with a bounded
// timeout and behind a circuit breaker, and its failure must never roll
// back or block the write that triggered it.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atlasclinic/clinic-api/pkg/circuitbreaker"
)

const defaultTimeout = 5 * time.Second

type Config struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"TWILIO_WHATSAPP_NUMBER"`
	BaseURL    string `envconfig:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	Timeout    time.Duration
}

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Client struct {
	cfg    Config
	client *http.Client
	cb     *circuitbreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "twilio-whatsapp",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

// Send posts one WhatsApp message. Numbers get the whatsapp: prefix Twilio
// expects if the caller did not supply it.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" {
		return fmt.Errorf("whatsapp transport not configured")
	}

	form := url.Values{}
	form.Set("From", prefixed(c.cfg.FromNumber))
	form.Set("To", prefixed(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountSID)

	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to build twilio request: %w", err)
		}
		req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("twilio request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, payload)
		}
		return nil
	})
}

func prefixed(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

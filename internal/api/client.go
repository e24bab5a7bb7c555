package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"embedctl/internal/config"
	"embedctl/pkg/logging"
)

// DefaultTimeout bounds a single API round-trip unless overridden.
const DefaultTimeout = 30 * time.Second

// Client talks to the Embeddable API with one credential.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL replaces the region base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for apiKey in region.
func New(apiKey string, region config.Region, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    region.BaseURL(),
		userAgent:  "embedctl",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL all endpoints are relative to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// send performs one HTTP exchange and returns the raw status and body.
// Only transport failures are errors here.
func (c *Client) send(ctx context.Context, method, endpoint string, body any) (int, []byte, error) {
	url := c.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		logging.Debug("api", "Request Body: %s", redact(payload))
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request %s %s: %w", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	logging.Debug("api", "API Request: %s %s", method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s %s: %w", method, url, err)
	}
	return resp.StatusCode, data, nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

// request is the one primitive all resource calls go through. It returns
// (nil, nil) for a successful response without usable content.
func request[T any](ctx context.Context, c *Client, method, endpoint string, body any) (*T, error) {
	status, data, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	if !successful(status) {
		logging.Debug("api", "API Error Response (%d): %s", status, string(data))
		return nil, &Error{
			StatusCode: status,
			Message:    errorMessage(data, status),
			Method:     method,
			Endpoint:   endpoint,
		}
	}

	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		logging.Debug("api", "API Response: Success (no content)")
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		logging.Debug("api", "API Response: Empty or non-JSON response (%v)", err)
		return nil, nil
	}
	logging.Debug("api", "API Response: %s", redact(data))
	return &out, nil
}

// redact blanks secrets before a payload reaches the debug log.
func redact(payload []byte) string {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	scrub(v)
	out, err := json.Marshal(v)
	if err != nil {
		return string(payload)
	}
	return string(out)
}

var secretKeys = map[string]bool{
	"password":    true,
	"private_key": true,
	"token":       true,
}

func scrub(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if secretKeys[strings.ToLower(k)] {
				t[k] = "***"
				continue
			}
			scrub(val)
		}
	case []any:
		for _, val := range t {
			scrub(val)
		}
	}
}

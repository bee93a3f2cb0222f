// Package client is the Go API client for an Angel Archive server. It is
// consumed by the collection store and by CLI tooling.
package client

import (
	"encoding/json/v2"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Angel Archive HTTP API. Safe for concurrent use.
type Client struct {
	http   *resty.Client
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

// New creates an API client for the given server.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &Client{http: httpClient, logger: logger}
}

// SetToken installs the access token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the current access token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// request returns a prepared request carrying the auth token when present.
func (c *Client) request() *resty.Request {
	req := c.http.R()
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// envelope mirrors the server's response wrapper.
type envelope[T any] struct {
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details"`
	Success bool           `json:"success"`
}

// decode maps error responses to domain errors and unmarshals the data
// payload on success.
func decode[T any](resp *resty.Response) (T, error) {
	var env envelope[T]
	if err := mapHTTPError(resp); err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return env.Data, err
	}
	return env.Data, nil
}

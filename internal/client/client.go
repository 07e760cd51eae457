// Package client talks to the fitness API: it unwraps the response envelope, attaches the bearer
// token, refreshes it once on 401 and retries idempotent reads on transient failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = 300 * time.Millisecond
	refreshPath       = "/auth/refresh"
)

// Tokens is the credential pair held by the client.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type transitionDetails struct {
	CurrentStatus string `json:"currentStatus"`
	Operation     string `json:"operation"`
}

type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	onTokens   func(Tokens)

	mu     sync.Mutex
	tokens Tokens

	refreshMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how often a GET is retried and the first backoff, which doubles per attempt.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

func WithTokens(t Tokens) Option {
	return func(c *Client) { c.tokens = t }
}

// WithTokenListener is called whenever login or refresh replaces the tokens.
func WithTokenListener(fn func(Tokens)) Option {
	return func(c *Client) { c.onTokens = fn }
}

// New creates a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Client) setTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
	if c.onTokens != nil {
		c.onTokens(t)
	}
}

// do sends one API call and decodes the envelope's data into out.
// Only GETs are retried; a 401 triggers one refresh and one replay.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	refreshed := false
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return err
			}
		}

		sentWith := c.Tokens().AccessToken
		data, err := c.send(ctx, method, path, query, payload, sentWith)
		if err == nil {
			return decodeData(data, out)
		}

		if errors.Is(err, ErrUnauthorized) && !refreshed && !strings.HasPrefix(path, "/auth/") {
			refreshed = true
			if rerr := c.refresh(ctx, sentWith); rerr != nil {
				log.Printf("WARN: token refresh failed: %v", rerr)
				return err
			}
			// The replay does not count as a retry
			attempt--
			continue
		}

		lastErr = err
		if !errors.Is(err, ErrTransient) || ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, accessToken string) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrTransient, method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Error}
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
		if resp.StatusCode == http.StatusConflict && len(env.Data) > 0 {
			var details transitionDetails
			if json.Unmarshal(env.Data, &details) == nil {
				apiErr.CurrentStatus, apiErr.Operation = details.CurrentStatus, details.Operation
			}
		}
		return nil, apiErr
	}
	return env.Data, nil
}

// refresh exchanges the refresh token unless another call already replaced staleAccess.
// A rejected refresh clears the stored credentials; a transient failure keeps them.
func (c *Client) refresh(ctx context.Context, staleAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.Tokens()
	if current.AccessToken != staleAccess {
		return nil
	}
	if current.RefreshToken == "" {
		return ErrUnauthorized
	}

	payload, _ := json.Marshal(map[string]string{"refreshToken": current.RefreshToken})
	data, err := c.send(ctx, http.MethodPost, refreshPath, nil, payload, "")
	if err != nil {
		if !errors.Is(err, ErrTransient) && ctx.Err() == nil {
			c.setTokens(Tokens{})
		}
		return err
	}
	var next Tokens
	if err := decodeData(data, &next); err != nil {
		return err
	}
	c.setTokens(next)
	return nil
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	d := c.backoff << (attempt - 1)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

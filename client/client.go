// Package client is the typed request/response layer over the ReconCraft
// backend HTTP API: workflows, runs, targets, integrations, API keys, and
// system health. Reads go through a tag-based response cache; writes
// invalidate the tags they touch. Authentication is an opaque bearer token
// obtained via the API-key exchange endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Resource tags for cache filing and invalidation.
const (
	tagWorkflow    = "workflow"
	tagRun         = "run"
	tagTarget      = "target"
	tagIntegration = "integration"
	tagAPIKey      = "apikey"
	tagSystem      = "system"
)

// Client talks to one ReconCraft backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenStore
	cache   *tagCache
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpc     *http.Client
	tokens    TokenStore
	logger    *slog.Logger
	cacheTTL  time.Duration
	cacheSize int
	rps       float64
	burst     int
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpc = h }
}

// WithTokenStore sets the bearer-token store. Defaults to an in-memory
// store; the CLI injects a keyring-backed one.
func WithTokenStore(ts TokenStore) Option {
	return func(o *options) { o.tokens = ts }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCacheTTL sets how long cached GET responses stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) { o.rps, o.burst = rps, burst }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := options{
		httpc:     &http.Client{Timeout: 30 * time.Second},
		tokens:    NewMemoryStore(),
		logger:    slog.Default(),
		cacheTTL:  30 * time.Second,
		cacheSize: 256,
		rps:       10,
		burst:     20,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   o.httpc,
		tokens:  o.tokens,
		cache:   newTagCache(o.cacheSize, o.cacheTTL),
		limiter: rate.NewLimiter(rate.Limit(o.rps), o.burst),
		logger:  o.logger,
	}
}

// Tokens exposes the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// Login exchanges an API key for a bearer token and persists it. When the
// backend omits the expiry, it is read from the token's own exp claim.
func (c *Client) Login(ctx context.Context, apiKey string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", nil, map[string]string{"apiKey": apiKey}, &resp); err != nil {
		return nil, fmt.Errorf("exchange api key: %w", err)
	}
	if resp.ExpiresAt.IsZero() {
		exp, err := tokenExpiry(resp.Token)
		if err != nil {
			c.logger.Warn("token has unreadable claims, storing without expiry", "err", err)
		} else {
			resp.ExpiresAt = exp
		}
	}
	if err := c.tokens.Save(resp.Token, resp.ExpiresAt); err != nil {
		return nil, err
	}
	// A new identity may see different resources.
	c.cache.clear()
	return &resp, nil
}

// Logout clears the stored token and the response cache.
func (c *Client) Logout() error {
	c.cache.clear()
	return c.tokens.Clear()
}

// do issues one request. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// getCached serves a GET from the tag cache when fresh, otherwise fetches
// and files the response body under tag.
func (c *Client) getCached(ctx context.Context, tag, path string, query url.Values, out any) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	if raw, ok := c.cache.get(key); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
		// An undecodable entry is useless; fall through to a refetch.
		c.logger.Warn("dropping corrupt cache entry", "key", key)
	}

	raw, err := c.roundTrip(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	c.cache.set(key, tag, raw)
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode GET %s response: %w", path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.tokens.Token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Debug("backend error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}
	return raw, nil
}

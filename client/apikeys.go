package client

import (
	"context"
	"net/http"
)

// CreateAPIKey mints a new backend API key. The full key material is only
// present in this response.
func (c *Client) CreateAPIKey(ctx context.Context, name string, expiresInDays int) (*APIKey, error) {
	body := map[string]any{"name": name}
	if expiresInDays > 0 {
		body["expiresInDays"] = expiresInDays
	}
	var out APIKey
	if err := c.do(ctx, http.MethodPost, "/auth/api-keys", nil, body, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagAPIKey)
	return &out, nil
}

// ListAPIKeys returns the account's API keys (prefixes only).
func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var out []APIKey
	if err := c.getCached(ctx, tagAPIKey, "/auth/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAPIKey revokes an API key.
func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/auth/api-keys/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.cache.invalidateTag(tagAPIKey)
	return nil
}

package client

import (
	"context"
	"fmt"
	"net/http"
)

func integrationPath(kind string) (string, error) {
	switch kind {
	case "slack", "discord":
		return "/integrations/" + kind, nil
	default:
		return "", fmt.Errorf("unknown integration %q", kind)
	}
}

// GetIntegration fetches the slack or discord integration settings.
func (c *Client) GetIntegration(ctx context.Context, kind string) (*Integration, error) {
	path, err := integrationPath(kind)
	if err != nil {
		return nil, err
	}
	var out Integration
	if err := c.getCached(ctx, tagIntegration, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfigureIntegration sets a webhook integration's URL and enabled flag.
func (c *Client) ConfigureIntegration(ctx context.Context, kind, webhookURL string, enabled bool) (*Integration, error) {
	path, err := integrationPath(kind)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"webhookUrl": webhookURL, "enabled": enabled}
	var out Integration
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagIntegration)
	return &out, nil
}

package client

import "context"

// GetHealth fetches backend health. Not cached beyond the short system TTL;
// dashboards poll it.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getCached(ctx, tagSystem, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMetrics fetches workflow/run counts and rollups for the dashboard.
func (c *Client) GetMetrics(ctx context.Context) (*Metrics, error) {
	var out Metrics
	if err := c.getCached(ctx, tagSystem, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

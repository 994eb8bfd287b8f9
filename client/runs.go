package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// StartRun triggers a workflow execution. The backend creates the Run and
// reports progress through GetRun snapshots.
func (c *Client) StartRun(ctx context.Context, req StartRunRequest) (*Run, error) {
	var out Run
	if err := c.do(ctx, http.MethodPost, "/runs", nil, req, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagRun)
	return &out, nil
}

// ListRuns returns runs matching the query.
func (c *Client) ListRuns(ctx context.Context, q RunQuery) ([]Run, error) {
	query := url.Values{}
	if q.WorkflowID != "" {
		query.Set("workflowId", q.WorkflowID)
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}

	var out []Run
	if err := c.getCached(ctx, tagRun, "/runs", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun fetches one run snapshot. It bypasses the cache: the run
// reconciler polls this and must see fresh backend state every tick.
func (c *Client) GetRun(ctx context.Context, id string) (*Run, error) {
	var out Run
	if err := c.do(ctx, http.MethodGet, "/runs/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRunLogs fetches a page of the run's flattened log stream.
func (c *Client) GetRunLogs(ctx context.Context, runID string, offset, limit int) (*RunLogs, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	if limit <= 0 {
		limit = 100
	}
	query.Set("limit", strconv.Itoa(limit))

	var out RunLogs
	if err := c.do(ctx, http.MethodGet, "/runs/"+runID+"/logs", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendRunToSlack asks the backend to post the run's results to the
// configured Slack webhook.
func (c *Client) SendRunToSlack(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodPost, "/runs/"+runID+"/actions/send-slack", nil, nil, nil)
}

// SendRunToDiscord asks the backend to post the run's results to the
// configured Discord webhook.
func (c *Client) SendRunToDiscord(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodPost, "/runs/"+runID+"/actions/send-discord", nil, nil, nil)
}

package client

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

// Target format validation, applied locally before any request is issued.
// IPs optionally carry a CIDR suffix; hostnames are dot-separated
// alphanumeric labels with interior hyphens.
var (
	ipPattern       = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}(/\d{1,2})?$`)
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*$`)
)

// ValidTarget reports whether value looks like an IP, CIDR, or hostname.
func ValidTarget(value string) bool {
	return ipPattern.MatchString(value) || hostnamePattern.MatchString(value)
}

// ListTargets returns all authorized targets.
func (c *Client) ListTargets(ctx context.Context) ([]Target, error) {
	var out []Target
	if err := c.getCached(ctx, tagTarget, "/targets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTarget registers one target. An invalid value is rejected locally
// with ErrInvalidTarget and no request is made.
func (c *Client) CreateTarget(ctx context.Context, value string, tags []string) (*Target, error) {
	if !ValidTarget(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, value)
	}
	body := map[string]any{"value": value, "tags": tags}
	var out Target
	if err := c.do(ctx, http.MethodPost, "/targets", nil, body, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagTarget)
	return &out, nil
}

// BulkImportTargets registers several targets at once. The whole batch is
// rejected locally if any value fails validation, so no partial import is
// ever committed.
func (c *Client) BulkImportTargets(ctx context.Context, values, tags []string) ([]Target, error) {
	for _, v := range values {
		if !ValidTarget(v) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, v)
		}
	}
	body := map[string]any{"targets": values}
	if len(tags) > 0 {
		body["tags"] = tags
	}
	var out []Target
	if err := c.do(ctx, http.MethodPost, "/targets/bulk", nil, body, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagTarget)
	return out, nil
}

// DeleteTarget removes a target.
func (c *Client) DeleteTarget(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/targets/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.cache.invalidateTag(tagTarget)
	return nil
}

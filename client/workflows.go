package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shipsec/reconcraft/graph"
)

// ListWorkflows returns all workflows.
func (c *Client) ListWorkflows(ctx context.Context) ([]graph.Workflow, error) {
	var out []graph.Workflow
	if err := c.getCached(ctx, tagWorkflow, "/workflows", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWorkflow fetches one workflow by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*graph.Workflow, error) {
	var out graph.Workflow
	if err := c.getCached(ctx, tagWorkflow, "/workflows/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWorkflow persists a new workflow and returns the backend's
// authoritative copy.
func (c *Client) CreateWorkflow(ctx context.Context, w graph.Workflow) (*graph.Workflow, error) {
	var out graph.Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows", nil, w, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagWorkflow)
	return &out, nil
}

// UpdateWorkflow replaces the workflow with the given id.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, w graph.Workflow) (*graph.Workflow, error) {
	if id == "" {
		return nil, fmt.Errorf("update workflow: empty id")
	}
	var out graph.Workflow
	if err := c.do(ctx, http.MethodPut, "/workflows/"+id, nil, w, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagWorkflow)
	return &out, nil
}

// DeleteWorkflow removes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/workflows/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.cache.invalidateTag(tagWorkflow)
	return nil
}

// DuplicateWorkflow asks the backend to copy a workflow.
func (c *Client) DuplicateWorkflow(ctx context.Context, id string) (*graph.Workflow, error) {
	var out graph.Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows/"+id+"/duplicate", nil, nil, &out); err != nil {
		return nil, err
	}
	c.cache.invalidateTag(tagWorkflow)
	return &out, nil
}

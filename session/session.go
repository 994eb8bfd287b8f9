// Package session is one workflow-editing session: it composes the node
// catalog (palette), the workflow graph model (canvas state), and the node
// configuration editor (side panel) over the backend API. The session owns
// its model exclusively; backend state only flows in on open/save.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shipsec/reconcraft/catalog"
	"github.com/shipsec/reconcraft/client"
	"github.com/shipsec/reconcraft/editor"
	"github.com/shipsec/reconcraft/graph"
)

var (
	// ErrNotAuthorized is returned when a run is triggered on a workflow
	// whose targets have not been authorized. No request is issued.
	ErrNotAuthorized = errors.New("targets not authorized for this workflow")
	// ErrEmptyWorkflow is returned when triggering a workflow with no nodes.
	ErrEmptyWorkflow = errors.New("workflow has no nodes")
	// ErrUnsaved is returned when triggering a workflow that was never saved.
	ErrUnsaved = errors.New("workflow must be saved before running")
	// ErrNoSelection is returned when editing without a selected node.
	ErrNoSelection = errors.New("no node selected")
)

// Backend is the slice of the API layer a session needs. *client.Client
// satisfies it.
type Backend interface {
	GetWorkflow(ctx context.Context, id string) (*graph.Workflow, error)
	CreateWorkflow(ctx context.Context, w graph.Workflow) (*graph.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, w graph.Workflow) (*graph.Workflow, error)
	DuplicateWorkflow(ctx context.Context, id string) (*graph.Workflow, error)
	StartRun(ctx context.Context, req client.StartRunRequest) (*client.Run, error)
}

// Session edits one workflow.
type Session struct {
	backend  Backend
	model    *graph.Model
	logger   *slog.Logger
	selected string
}

// New starts a session on a fresh, unsaved workflow.
func New(backend Backend, name string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{backend: backend, model: graph.NewModel(name), logger: logger}
}

// Open loads an existing workflow into a new session.
func Open(ctx context.Context, backend Backend, id string, logger *slog.Logger) (*Session, error) {
	w, err := backend.GetWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open workflow %s: %w", id, err)
	}
	s := New(backend, w.Name, logger)
	s.model.Hydrate(*w)
	return s, nil
}

// Model exposes the session's graph model for direct canvas mutations
// (move, connect, remove). The session remains the model's single owner.
func (s *Session) Model() *graph.Model { return s.model }

// Palette returns all node definitions grouped by category, in palette
// order, for the add-node surface.
func (s *Session) Palette() map[catalog.Category][]catalog.Definition {
	out := make(map[catalog.Category][]catalog.Definition, len(catalog.Categories()))
	for _, cat := range catalog.Categories() {
		if defs := catalog.ByCategory(cat); len(defs) > 0 {
			out[cat] = defs
		}
	}
	return out
}

// DropNode adds a node of the given kind at pos, as when dragged from the
// palette onto the canvas.
func (s *Session) DropNode(kind catalog.Kind, pos graph.Position) (graph.Node, error) {
	return s.model.AddNode(kind, pos)
}

// Select opens a configuration draft for the given node. Applying the draft
// commits the replacement configuration and label back into the model;
// discarding it leaves the node untouched.
func (s *Session) Select(nodeID string) (*editor.Draft, error) {
	node, ok := s.model.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("select: %w: %q", graph.ErrNodeNotFound, nodeID)
	}
	def, ok := catalog.Lookup(node.Kind)
	if !ok {
		// A hydrated workflow can only hold catalog kinds; anything else is
		// corrupt backend data.
		return nil, fmt.Errorf("select: %w: %q", graph.ErrUnknownKind, node.Kind)
	}
	s.selected = nodeID

	return editor.NewDraft(node, def, func(id string, cfg map[string]any, label string) {
		if !s.model.SetNodeConfig(id, cfg) {
			s.logger.Warn("apply on removed node ignored", "node_id", id)
			return
		}
		s.model.SetNodeLabel(id, label)
	}), nil
}

// Selected returns the currently selected node id, empty when none.
func (s *Session) Selected() string { return s.selected }

// Deselect clears the selection.
func (s *Session) Deselect() { s.selected = "" }

// Save persists the working copy: create on first save, update afterwards.
// The backend's authoritative workflow replaces the local state.
func (s *Session) Save(ctx context.Context) (*graph.Workflow, error) {
	w := s.model.Serialize()

	var (
		saved *graph.Workflow
		err   error
	)
	if w.ID == "" {
		saved, err = s.backend.CreateWorkflow(ctx, w)
	} else {
		saved, err = s.backend.UpdateWorkflow(ctx, w.ID, w)
	}
	if err != nil {
		return nil, fmt.Errorf("save workflow: %w", err)
	}

	s.model.Hydrate(*saved)
	return saved, nil
}

// Duplicate asks the backend to copy the saved workflow. The session keeps
// editing the original.
func (s *Session) Duplicate(ctx context.Context) (*graph.Workflow, error) {
	if s.model.ID() == "" {
		return nil, ErrUnsaved
	}
	return s.backend.DuplicateWorkflow(ctx, s.model.ID())
}

// Trigger starts a run of the saved workflow. The authorization gate is
// enforced locally: an unauthorized workflow is rejected before any request
// reaches the backend.
func (s *Session) Trigger(ctx context.Context, targets []string, mode client.RunMode) (string, error) {
	if !s.model.Authorized() {
		return "", ErrNotAuthorized
	}
	if s.model.NodeCount() == 0 {
		return "", ErrEmptyWorkflow
	}
	if s.model.ID() == "" {
		return "", ErrUnsaved
	}

	run, err := s.backend.StartRun(ctx, client.StartRunRequest{
		WorkflowID:       s.model.ID(),
		Targets:          targets,
		RunMode:          mode,
		AuthorizeTargets: true,
	})
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	s.logger.Info("run started", "run_id", run.ID, "workflow_id", s.model.ID())
	return run.ID, nil
}

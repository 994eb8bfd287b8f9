package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shipsec/reconcraft/catalog"
)

var (
	// ErrUnknownKind is returned when a node kind has no catalog entry.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrNodeNotFound is returned when an edge endpoint references a node id
	// that is not part of the workflow.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSelfEdge is returned when an edge would connect a node to itself.
	ErrSelfEdge = errors.New("edge connects node to itself")
	// ErrDuplicateEdge is returned when an identical connection already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Model is the mutable working copy of one workflow. It is single-owner:
// one editing session mutates it, and it is only reconciled with the backend
// on an explicit save.
type Model struct {
	workflow Workflow
}

// NewModel creates an empty workflow model with the given name.
func NewModel(name string) *Model {
	return &Model{workflow: Workflow{Name: name}}
}

// Hydrate replaces the model's state with the given workflow's data, used
// when loading an existing workflow for editing.
func (m *Model) Hydrate(w Workflow) {
	m.workflow = w
	m.workflow.Nodes = copyNodes(w.Nodes)
	m.workflow.Edges = copyEdges(w.Edges)
}

// Serialize produces the persistence-ready workflow. The returned value
// shares nothing with the model's internal state.
func (m *Model) Serialize() Workflow {
	w := m.workflow
	w.Nodes = copyNodes(m.workflow.Nodes)
	w.Edges = copyEdges(m.workflow.Edges)
	return w
}

// ID returns the backend-assigned workflow id, empty until first saved.
func (m *Model) ID() string { return m.workflow.ID }

// Name returns the workflow name.
func (m *Model) Name() string { return m.workflow.Name }

// SetName updates the workflow name.
func (m *Model) SetName(name string) { m.workflow.Name = name }

// Authorized reports whether scan targets have been authorized for this
// workflow. Execution is gated on it.
func (m *Model) Authorized() bool { return m.workflow.AuthorizedTargets }

// SetAuthorized sets the target-authorization flag.
func (m *Model) SetAuthorized(v bool) { m.workflow.AuthorizedTargets = v }

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.workflow.Nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.workflow.Edges) }

// Nodes returns a copy of all nodes.
func (m *Model) Nodes() []Node { return copyNodes(m.workflow.Nodes) }

// Edges returns a copy of all edges.
func (m *Model) Edges() []Edge { return copyEdges(m.workflow.Edges) }

// Node returns the node with the given id.
func (m *Model) Node(id string) (Node, bool) {
	if i := m.findNode(id); i >= 0 {
		return copyNode(m.workflow.Nodes[i]), true
	}
	return Node{}, false
}

// AddNode creates a node of the given kind at pos, copying its label,
// category, and default configuration from the catalog, and appends it to
// the workflow. A kind without a catalog entry is an error.
func (m *Model) AddNode(kind catalog.Kind, pos Position) (Node, error) {
	def, ok := catalog.Lookup(kind)
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	n := Node{
		ID:       newID("node"),
		Kind:     def.Kind,
		Label:    def.Label,
		Category: def.Category,
		Config:   def.NewConfig(),
		Position: pos,
	}
	m.workflow.Nodes = append(m.workflow.Nodes, n)
	return copyNode(n), nil
}

// RemoveNode deletes the node and every edge incident to it. It reports
// whether the node existed.
func (m *Model) RemoveNode(id string) bool {
	i := m.findNode(id)
	if i < 0 {
		return false
	}
	m.workflow.Nodes = append(m.workflow.Nodes[:i], m.workflow.Nodes[i+1:]...)

	kept := m.workflow.Edges[:0]
	for _, e := range m.workflow.Edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	m.workflow.Edges = kept
	return true
}

// MoveNode updates a node's canvas position. No-op on an unknown id.
func (m *Model) MoveNode(id string, pos Position) bool {
	i := m.findNode(id)
	if i < 0 {
		return false
	}
	m.workflow.Nodes[i].Position = pos
	return true
}

// SetNodeLabel updates a node's display label. No-op on an unknown id.
func (m *Model) SetNodeLabel(id, label string) bool {
	i := m.findNode(id)
	if i < 0 {
		return false
	}
	m.workflow.Nodes[i].Label = label
	return true
}

// UpdateNodeConfig shallow-merges partial into the node's configuration:
// keys in partial overwrite, sibling keys are untouched. No-op on an
// unknown id, reported via the return value.
func (m *Model) UpdateNodeConfig(id string, partial map[string]any) bool {
	i := m.findNode(id)
	if i < 0 {
		return false
	}
	if m.workflow.Nodes[i].Config == nil {
		m.workflow.Nodes[i].Config = make(map[string]any, len(partial))
	}
	for k, v := range catalog.CopyConfig(partial) {
		m.workflow.Nodes[i].Config[k] = v
	}
	return true
}

// SetNodeConfig replaces the node's configuration object wholesale. Used by
// the configuration editor, which hands back a complete replacement on apply.
func (m *Model) SetNodeConfig(id string, cfg map[string]any) bool {
	i := m.findNode(id)
	if i < 0 {
		return false
	}
	m.workflow.Nodes[i].Config = catalog.CopyConfig(cfg)
	return true
}

// EdgeOption configures an edge created by Connect.
type EdgeOption func(*Edge)

// WithEdgeLabel sets the edge's branch label, e.g. "onSuccess".
func WithEdgeLabel(label string) EdgeOption {
	return func(e *Edge) { e.Label = label }
}

// WithHandles sets the source and target handle identifiers.
func WithHandles(source, target string) EdgeOption {
	return func(e *Edge) { e.SourceHandle, e.TargetHandle = source, target }
}

// WithEdgeType sets the edge's type tag.
func WithEdgeType(t string) EdgeOption {
	return func(e *Edge) { e.Type = t }
}

// Connect creates a directed edge from source to target. Both endpoints must
// exist in the workflow. Self-loops are rejected, as are edges duplicating
// an existing (source, target, label) triple.
func (m *Model) Connect(source, target string, opts ...EdgeOption) (Edge, error) {
	if m.findNode(source) < 0 {
		return Edge{}, fmt.Errorf("connect source: %w: %q", ErrNodeNotFound, source)
	}
	if m.findNode(target) < 0 {
		return Edge{}, fmt.Errorf("connect target: %w: %q", ErrNodeNotFound, target)
	}
	if source == target {
		return Edge{}, fmt.Errorf("%w: %q", ErrSelfEdge, source)
	}

	e := Edge{ID: newID("edge"), Source: source, Target: target}
	for _, opt := range opts {
		opt(&e)
	}

	for _, existing := range m.workflow.Edges {
		if existing.Source == e.Source && existing.Target == e.Target && existing.Label == e.Label {
			return Edge{}, fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, source, target)
		}
	}

	m.workflow.Edges = append(m.workflow.Edges, e)
	return e, nil
}

// Disconnect removes the edge with the given id, reporting whether it existed.
func (m *Model) Disconnect(edgeID string) bool {
	for i, e := range m.workflow.Edges {
		if e.ID == edgeID {
			m.workflow.Edges = append(m.workflow.Edges[:i], m.workflow.Edges[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Model) findNode(id string) int {
	for i, n := range m.workflow.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

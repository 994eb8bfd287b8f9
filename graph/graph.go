// Package graph holds the in-memory working state of one workflow being
// edited: typed nodes, directed edges, and workflow metadata. The model is
// independent of any rendering surface; it only knows positions, kinds, and
// configuration objects. Mutations are synchronous and single-owner.
package graph

import (
	"time"

	"github.com/shipsec/reconcraft/catalog"
)

// Position is a node's 2D canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one step in a workflow.
type Node struct {
	ID       string           `json:"id"`
	Kind     catalog.Kind     `json:"kind"`
	Label    string           `json:"label"`
	Category catalog.Category `json:"category"`
	Config   map[string]any   `json:"config"`
	Position Position         `json:"position"`
}

// Edge is a directed connection between two nodes. Label optionally names a
// branch condition such as "onSuccess".
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
	Type         string `json:"type,omitempty"`
}

// Workflow is the persistence-ready shape exchanged with the backend.
type Workflow struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	Nodes             []Node    `json:"nodes"`
	Edges             []Edge    `json:"edges"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
	UpdatedAt         time.Time `json:"updatedAt,omitzero"`
	AuthorizedTargets bool      `json:"authorizedTargets"`
}

func copyNode(n Node) Node {
	n.Config = catalog.CopyConfig(n.Config)
	return n
}

func copyNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = copyNode(n)
	}
	return out
}

func copyEdges(edges []Edge) []Edge {
	return append([]Edge(nil), edges...)
}

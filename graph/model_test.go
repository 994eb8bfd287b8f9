package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/shipsec/reconcraft/catalog"
)

func TestAddNodeDefaults(t *testing.T) {
	m := NewModel("test")

	n, err := m.AddNode(catalog.KindNmap, Position{X: 120, Y: 40})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if !strings.HasPrefix(n.ID, "node-") {
		t.Errorf("node id %q does not carry the node prefix", n.ID)
	}
	if n.Label != "Nmap Scan" {
		t.Errorf("label = %q, want catalog label", n.Label)
	}
	if n.Category != catalog.CategoryRecon {
		t.Errorf("category = %q, want %q", n.Category, catalog.CategoryRecon)
	}
	if n.Position.X != 120 || n.Position.Y != 40 {
		t.Errorf("position = %+v, want {120 40}", n.Position)
	}
	if n.Config["profile"] != "quick" {
		t.Errorf("config profile = %v, want catalog default", n.Config["profile"])
	}
	if m.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", m.NodeCount())
	}
}

func TestAddNodeUnknownKind(t *testing.T) {
	m := NewModel("test")
	if _, err := m.AddNode("warp-drive", Position{}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
	if m.NodeCount() != 0 {
		t.Error("failed AddNode still appended a node")
	}
}

func TestAddNodeConfigIsolated(t *testing.T) {
	m := NewModel("test")
	n, _ := m.AddNode(catalog.KindNmap, Position{})

	// Mutating the returned node must not affect the stored one.
	n.Config["profile"] = "deep"
	stored, _ := m.Node(n.ID)
	if stored.Config["profile"] != "quick" {
		t.Error("returned node shares config with the model")
	}
}

func TestUpdateNodeConfigMerges(t *testing.T) {
	m := NewModel("test")
	n, _ := m.AddNode(catalog.KindNmap, Position{})

	if !m.UpdateNodeConfig(n.ID, map[string]any{"profile": "deep"}) {
		t.Fatal("UpdateNodeConfig reported missing node")
	}
	if !m.UpdateNodeConfig(n.ID, map[string]any{"flags": "-sV -O"}) {
		t.Fatal("UpdateNodeConfig reported missing node")
	}

	got, _ := m.Node(n.ID)
	if got.Config["profile"] != "deep" {
		t.Errorf("profile = %v, want deep", got.Config["profile"])
	}
	if got.Config["flags"] != "-sV -O" {
		t.Errorf("flags = %v, second merge should not clobber earlier keys", got.Config["flags"])
	}
	if _, ok := got.Config["targets"]; !ok {
		t.Error("merge dropped an untouched sibling key")
	}

	if m.UpdateNodeConfig("node-gone", map[string]any{"x": 1}) {
		t.Error("UpdateNodeConfig succeeded on an unknown id")
	}
}

func TestSetNodeConfigReplaces(t *testing.T) {
	m := NewModel("test")
	n, _ := m.AddNode(catalog.KindNmap, Position{})

	m.SetNodeConfig(n.ID, map[string]any{"profile": "udp"})
	got, _ := m.Node(n.ID)
	if len(got.Config) != 1 || got.Config["profile"] != "udp" {
		t.Errorf("config = %v, want wholesale replacement", got.Config)
	}
}

func TestConnectValidation(t *testing.T) {
	m := NewModel("test")
	a, _ := m.AddNode(catalog.KindStart, Position{})
	b, _ := m.AddNode(catalog.KindNmap, Position{})

	if _, err := m.Connect(a.ID, "node-missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("dangling target: err = %v, want ErrNodeNotFound", err)
	}
	if _, err := m.Connect("node-missing", b.ID); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("dangling source: err = %v, want ErrNodeNotFound", err)
	}
	if _, err := m.Connect(a.ID, a.ID); !errors.Is(err, ErrSelfEdge) {
		t.Errorf("self loop: err = %v, want ErrSelfEdge", err)
	}

	e, err := m.Connect(a.ID, b.ID, WithEdgeLabel("onSuccess"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if e.Label != "onSuccess" {
		t.Errorf("edge label = %q", e.Label)
	}

	if _, err := m.Connect(a.ID, b.ID, WithEdgeLabel("onSuccess")); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("duplicate triple: err = %v, want ErrDuplicateEdge", err)
	}
	// Same endpoints, different label is a distinct branch.
	if _, err := m.Connect(a.ID, b.ID, WithEdgeLabel("onFailure")); err != nil {
		t.Errorf("distinct label rejected: %v", err)
	}
	if m.EdgeCount() != 2 {
		t.Errorf("edge count = %d, want 2", m.EdgeCount())
	}
}

func TestRemoveNodeDropsIncidentEdges(t *testing.T) {
	m := NewModel("test")
	a, _ := m.AddNode(catalog.KindStart, Position{})
	b, _ := m.AddNode(catalog.KindNmap, Position{})
	c, _ := m.AddNode(catalog.KindReport, Position{})
	m.Connect(a.ID, b.ID)
	m.Connect(b.ID, c.ID)
	keep, _ := m.Connect(a.ID, c.ID)

	if !m.RemoveNode(b.ID) {
		t.Fatal("RemoveNode reported missing node")
	}
	if m.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2", m.NodeCount())
	}
	edges := m.Edges()
	if len(edges) != 1 || edges[0].ID != keep.ID {
		t.Errorf("edges = %+v, want only the a->c edge", edges)
	}

	if m.RemoveNode(b.ID) {
		t.Error("RemoveNode succeeded twice for the same id")
	}
}

func TestDisconnect(t *testing.T) {
	m := NewModel("test")
	a, _ := m.AddNode(catalog.KindStart, Position{})
	b, _ := m.AddNode(catalog.KindNmap, Position{})
	e, _ := m.Connect(a.ID, b.ID)

	if !m.Disconnect(e.ID) {
		t.Fatal("Disconnect reported missing edge")
	}
	if m.EdgeCount() != 0 {
		t.Errorf("edge count = %d, want 0", m.EdgeCount())
	}
	if m.Disconnect(e.ID) {
		t.Error("Disconnect succeeded twice for the same id")
	}
}

func TestMoveNode(t *testing.T) {
	m := NewModel("test")
	n, _ := m.AddNode(catalog.KindStart, Position{X: 1, Y: 1})

	if !m.MoveNode(n.ID, Position{X: 300, Y: 150}) {
		t.Fatal("MoveNode reported missing node")
	}
	got, _ := m.Node(n.ID)
	if got.Position.X != 300 || got.Position.Y != 150 {
		t.Errorf("position = %+v, want {300 150}", got.Position)
	}
	if m.MoveNode("node-gone", Position{}) {
		t.Error("MoveNode succeeded on an unknown id")
	}
}

// buildQuickRecon assembles the stock six-node pipeline used by the demo
// workflow: start -> nmap -> http-probe -> parser -> report, with a slack
// branch off the parser.
func buildQuickRecon(t *testing.T) *Model {
	t.Helper()
	m := NewModel("Quick Recon")
	start, _ := m.AddNode(catalog.KindStart, Position{X: 0, Y: 100})
	nmap, _ := m.AddNode(catalog.KindNmap, Position{X: 200, Y: 100})
	probe, _ := m.AddNode(catalog.KindHTTPProbe, Position{X: 400, Y: 100})
	parser, _ := m.AddNode(catalog.KindParser, Position{X: 600, Y: 100})
	report, _ := m.AddNode(catalog.KindReport, Position{X: 800, Y: 40})
	slack, _ := m.AddNode(catalog.KindSlack, Position{X: 800, Y: 180})

	for _, pair := range [][2]string{
		{start.ID, nmap.ID},
		{nmap.ID, probe.ID},
		{probe.ID, parser.ID},
		{parser.ID, report.ID},
		{parser.ID, slack.ID},
	} {
		if _, err := m.Connect(pair[0], pair[1]); err != nil {
			t.Fatalf("Connect(%s, %s): %v", pair[0], pair[1], err)
		}
	}
	return m
}

func TestSerializeHydrateRoundTrip(t *testing.T) {
	m := buildQuickRecon(t)
	m.SetAuthorized(true)

	w := m.Serialize()
	if len(w.Nodes) != 6 || len(w.Edges) != 5 {
		t.Fatalf("serialized %d nodes / %d edges, want 6 / 5", len(w.Nodes), len(w.Edges))
	}

	other := NewModel("")
	other.Hydrate(w)
	if other.Name() != "Quick Recon" {
		t.Errorf("hydrated name = %q", other.Name())
	}
	if !other.Authorized() {
		t.Error("hydration dropped the authorization flag")
	}
	if other.NodeCount() != 6 || other.EdgeCount() != 5 {
		t.Errorf("hydrated %d nodes / %d edges, want 6 / 5", other.NodeCount(), other.EdgeCount())
	}

	// The serialized snapshot must be insulated from later model edits.
	other.RemoveNode(w.Nodes[0].ID)
	if len(w.Nodes) != 6 {
		t.Error("hydrated model shares node slice with the snapshot")
	}
	w.Nodes[1].Config["profile"] = "deep"
	stored, _ := m.Node(w.Nodes[1].ID)
	if stored.Config["profile"] != "quick" {
		t.Error("serialized snapshot shares config with the source model")
	}
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shipsec/reconcraft/catalog"
	"github.com/shipsec/reconcraft/client"
	"github.com/shipsec/reconcraft/graph"
)

// fakeBackend records calls and plays back canned workflows.
type fakeBackend struct {
	workflows map[string]graph.Workflow
	created   int
	updated   int
	startReqs []client.StartRunRequest
	startErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{workflows: map[string]graph.Workflow{}}
}

func (b *fakeBackend) GetWorkflow(ctx context.Context, id string) (*graph.Workflow, error) {
	w, ok := b.workflows[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	return &w, nil
}

func (b *fakeBackend) CreateWorkflow(ctx context.Context, w graph.Workflow) (*graph.Workflow, error) {
	b.created++
	w.ID = "wf-created"
	b.workflows[w.ID] = w
	return &w, nil
}

func (b *fakeBackend) UpdateWorkflow(ctx context.Context, id string, w graph.Workflow) (*graph.Workflow, error) {
	b.updated++
	b.workflows[id] = w
	return &w, nil
}

func (b *fakeBackend) DuplicateWorkflow(ctx context.Context, id string) (*graph.Workflow, error) {
	w, ok := b.workflows[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	w.ID = id + "-copy"
	w.Name = w.Name + " (Copy)"
	return &w, nil
}

func (b *fakeBackend) StartRun(ctx context.Context, req client.StartRunRequest) (*client.Run, error) {
	b.startReqs = append(b.startReqs, req)
	if b.startErr != nil {
		return nil, b.startErr
	}
	return &client.Run{ID: "run-1", WorkflowID: req.WorkflowID, Status: client.RunQueued}, nil
}

func TestPaletteCoversAllKinds(t *testing.T) {
	s := New(newFakeBackend(), "test", nil)

	total := 0
	for cat, defs := range s.Palette() {
		for _, def := range defs {
			if def.Category != cat {
				t.Errorf("palette filed %q under %q", def.Kind, cat)
			}
			total++
		}
	}
	if total != len(catalog.Kinds()) {
		t.Errorf("palette holds %d kinds, want %d", total, len(catalog.Kinds()))
	}
}

func TestSelectEditApply(t *testing.T) {
	s := New(newFakeBackend(), "test", nil)
	n, err := s.DropNode(catalog.KindNmap, graph.Position{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("DropNode: %v", err)
	}

	draft, err := s.Select(n.ID)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if s.Selected() != n.ID {
		t.Errorf("Selected() = %q", s.Selected())
	}

	draft.SetLabel("Perimeter Scan")
	if err := draft.SetSelect("profile", "deep"); err != nil {
		t.Fatal(err)
	}
	if _, err := draft.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := s.Model().Node(n.ID)
	if got.Label != "Perimeter Scan" {
		t.Errorf("label = %q after apply", got.Label)
	}
	if got.Config["profile"] != "deep" {
		t.Errorf("config profile = %v after apply", got.Config["profile"])
	}
}

func TestSelectDiscardLeavesNodeUntouched(t *testing.T) {
	s := New(newFakeBackend(), "test", nil)
	n, _ := s.DropNode(catalog.KindNmap, graph.Position{})

	draft, err := s.Select(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := draft.SetSelect("profile", "udp"); err != nil {
		t.Fatal(err)
	}
	draft.Discard()

	got, _ := s.Model().Node(n.ID)
	if got.Config["profile"] != "quick" {
		t.Errorf("discarded draft still mutated the node: profile = %v", got.Config["profile"])
	}
}

func TestSelectMissingNode(t *testing.T) {
	s := New(newFakeBackend(), "test", nil)
	if _, err := s.Select("node-gone"); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Fatalf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestApplyAfterNodeRemoved(t *testing.T) {
	s := New(newFakeBackend(), "test", nil)
	n, _ := s.DropNode(catalog.KindNmap, graph.Position{})

	draft, err := s.Select(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	s.Model().RemoveNode(n.ID)

	// Applying a draft for a node deleted meanwhile must not panic or
	// resurrect the node.
	if _, err := draft.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Model().NodeCount() != 0 {
		t.Error("apply resurrected a removed node")
	}
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	backend := newFakeBackend()
	s := New(backend, "Quick Recon", nil)
	s.DropNode(catalog.KindStart, graph.Position{})

	saved, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID != "wf-created" {
		t.Errorf("first save id = %q", saved.ID)
	}
	if backend.created != 1 || backend.updated != 0 {
		t.Errorf("first save: created=%d updated=%d", backend.created, backend.updated)
	}
	if s.Model().ID() != "wf-created" {
		t.Error("session did not adopt the backend-assigned id")
	}

	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if backend.created != 1 || backend.updated != 1 {
		t.Errorf("second save: created=%d updated=%d", backend.created, backend.updated)
	}
}

func TestOpenHydratesWorkflow(t *testing.T) {
	backend := newFakeBackend()
	backend.workflows["wf-1"] = graph.Workflow{
		ID:   "wf-1",
		Name: "Quick Recon",
		Nodes: []graph.Node{
			{ID: "node-a", Kind: catalog.KindStart, Label: "Start"},
		},
		AuthorizedTargets: true,
	}

	s, err := Open(context.Background(), backend, "wf-1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Model().Name() != "Quick Recon" || s.Model().NodeCount() != 1 {
		t.Errorf("hydrated model: name=%q nodes=%d", s.Model().Name(), s.Model().NodeCount())
	}
	if !s.Model().Authorized() {
		t.Error("hydration dropped the authorization flag")
	}

	if _, err := Open(context.Background(), backend, "wf-gone", nil); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("open missing workflow: err = %v", err)
	}
}

func TestSelectNodeWithoutConfig(t *testing.T) {
	// Backend JSON may omit a node's config; editing such a node through
	// the session must still work end to end.
	backend := newFakeBackend()
	backend.workflows["wf-1"] = graph.Workflow{
		ID:   "wf-1",
		Name: "Quick Recon",
		Nodes: []graph.Node{
			{ID: "node-a", Kind: catalog.KindNmap, Label: "Nmap Scan"},
		},
	}

	s, err := Open(context.Background(), backend, "wf-1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	draft, err := s.Select("node-a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := draft.SetText("flags", "-A"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if _, err := draft.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := s.Model().Node("node-a")
	if got.Config["flags"] != "-A" {
		t.Errorf("config flags = %v after apply", got.Config["flags"])
	}
}

func TestTriggerAuthorizationGate(t *testing.T) {
	backend := newFakeBackend()
	s := New(backend, "test", nil)
	s.DropNode(catalog.KindStart, graph.Position{})
	s.Model().Hydrate(graph.Workflow{
		ID:    "wf-1",
		Name:  "test",
		Nodes: s.Model().Nodes(),
	})

	_, err := s.Trigger(context.Background(), []string{"10.0.2.3"}, client.RunModeDemo)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	if len(backend.startReqs) != 0 {
		t.Fatal("unauthorized trigger still reached the backend")
	}
}

func TestTriggerEmptyAndUnsaved(t *testing.T) {
	backend := newFakeBackend()
	s := New(backend, "test", nil)
	s.Model().SetAuthorized(true)

	if _, err := s.Trigger(context.Background(), nil, client.RunModeDemo); !errors.Is(err, ErrEmptyWorkflow) {
		t.Errorf("empty workflow: err = %v", err)
	}

	s.DropNode(catalog.KindStart, graph.Position{})
	if _, err := s.Trigger(context.Background(), nil, client.RunModeDemo); !errors.Is(err, ErrUnsaved) {
		t.Errorf("unsaved workflow: err = %v", err)
	}
	if len(backend.startReqs) != 0 {
		t.Error("rejected triggers still reached the backend")
	}
}

func TestTriggerStartsRun(t *testing.T) {
	backend := newFakeBackend()
	s := New(backend, "test", nil)
	s.DropNode(catalog.KindStart, graph.Position{})
	w := s.Model().Serialize()
	w.ID = "wf-1"
	w.AuthorizedTargets = true
	s.Model().Hydrate(w)

	runID, err := s.Trigger(context.Background(), []string{"10.0.2.3"}, client.RunModeLive)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if runID != "run-1" {
		t.Errorf("run id = %q", runID)
	}
	if len(backend.startReqs) != 1 {
		t.Fatalf("start requests = %d", len(backend.startReqs))
	}
	req := backend.startReqs[0]
	if req.WorkflowID != "wf-1" || req.RunMode != client.RunModeLive || !req.AuthorizeTargets {
		t.Errorf("start request = %+v", req)
	}
}

func TestDuplicateRequiresSave(t *testing.T) {
	backend := newFakeBackend()
	s := New(backend, "test", nil)

	if _, err := s.Duplicate(context.Background()); !errors.Is(err, ErrUnsaved) {
		t.Errorf("unsaved duplicate: err = %v", err)
	}

	s.DropNode(catalog.KindStart, graph.Position{})
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	copied, err := s.Duplicate(context.Background())
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if copied.ID == s.Model().ID() {
		t.Error("duplicate returned the original id")
	}
	if s.Model().ID() != "wf-created" {
		t.Error("duplicate switched the session to the copy")
	}
}

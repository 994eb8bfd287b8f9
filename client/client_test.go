package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shipsec/reconcraft/graph"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...)
}

func TestValidTarget(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"10.0.2.3", true},
		{"192.168.1.0/24", true},
		{"example.com", true},
		{"sub.example-site.co", true},
		{"localhost", true},
		{"not a target!", false},
		{"", false},
		{"-leading.example.com", false},
		{"trailing-.example.com", false},
		{"has_underscore.com", false},
	}
	for _, tc := range cases {
		if got := ValidTarget(tc.value); got != tc.want {
			t.Errorf("ValidTarget(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestCreateTargetRejectedLocally(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := c.CreateTarget(context.Background(), "not a target!", nil)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
	if requests != 0 {
		t.Errorf("invalid target still produced %d requests", requests)
	}
}

func TestBulkImportRejectsWholeBatch(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := c.BulkImportTargets(context.Background(), []string{"10.0.2.3", "bad target", "example.com"}, nil)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
	if requests != 0 {
		t.Errorf("partially invalid batch still produced %d requests", requests)
	}
}

func TestAPIErrorDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "workflow name must not be empty"}`))
	}))

	_, err := c.CreateWorkflow(context.Background(), graph.Workflow{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "workflow name must not be empty" {
		t.Errorf("message = %q, want the backend detail", apiErr.Message)
	}
}

func TestAPIErrorNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "no such workflow"}`))
	}))

	_, err := c.GetWorkflow(context.Background(), "wf-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want to match ErrNotFound", err)
	}
}

func TestAPIErrorFallbackMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))

	_, err := c.GetHealth(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "request failed" {
		t.Errorf("message = %q, want the generic fallback", apiErr.Message)
	}
}

func TestGetWorkflowCached(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"id": "wf-1", "name": "Quick Recon", "nodes": [], "edges": [], "authorizedTargets": true}`))
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		w, err := c.GetWorkflow(ctx, "wf-1")
		if err != nil {
			t.Fatalf("GetWorkflow: %v", err)
		}
		if w.Name != "Quick Recon" {
			t.Fatalf("name = %q", w.Name)
		}
	}
	if requests != 1 {
		t.Errorf("3 cached reads produced %d requests, want 1", requests)
	}
}

func TestWriteInvalidatesWorkflowTag(t *testing.T) {
	gets := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
		}
		w.Write([]byte(`{"id": "wf-1", "name": "Quick Recon", "nodes": [], "edges": []}`))
	}))

	ctx := context.Background()
	if _, err := c.GetWorkflow(ctx, "wf-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateWorkflow(ctx, "wf-1", graph.Workflow{ID: "wf-1", Name: "Quick Recon"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetWorkflow(ctx, "wf-1"); err != nil {
		t.Fatal(err)
	}
	if gets != 2 {
		t.Errorf("update did not invalidate the workflow tag: %d GETs, want 2", gets)
	}
}

func TestGetRunNeverCached(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"id": "run-1", "status": "running", "steps": []}`))
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.GetRun(ctx, "run-1"); err != nil {
			t.Fatal(err)
		}
	}
	if requests != 2 {
		t.Errorf("run polling saw %d requests for 2 reads, want 2 (no caching)", requests)
	}
}

func TestBearerHeader(t *testing.T) {
	var got string
	store := NewMemoryStore()
	store.Save("token-abc", time.Now().Add(time.Hour))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), WithTokenStore(store))

	if _, err := c.ListTargets(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer token-abc" {
		t.Errorf("Authorization = %q, want the stored bearer token", got)
	}
}

func TestLoginReadsExpiryFromClaims(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "key-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	store := NewMemoryStore()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/token" {
			t.Errorf("login hit %s", r.URL.Path)
		}
		// Backend omits expiresAt; the client falls back to the exp claim.
		w.Write([]byte(`{"token": "` + signed + `"}`))
	}), WithTokenStore(store))

	resp, err := c.Login(context.Background(), "rc_testkey")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !resp.ExpiresAt.Equal(exp) {
		t.Errorf("expiry = %s, want %s from the exp claim", resp.ExpiresAt, exp)
	}
	if tok, err := store.Token(); err != nil || tok != signed {
		t.Errorf("stored token = %q, %v", tok, err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty store: err = %v, want ErrNoToken", err)
	}

	store.Save("stale", time.Now().Add(-time.Minute))
	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("expired token: err = %v, want ErrNoToken", err)
	}

	store.Save("fresh", time.Now().Add(time.Hour))
	if tok, err := store.Token(); err != nil || tok != "fresh" {
		t.Errorf("fresh token = %q, %v", tok, err)
	}

	store.Clear()
	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("cleared store: err = %v, want ErrNoToken", err)
	}
}

func TestRunQueryParams(t *testing.T) {
	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	_, err := c.ListRuns(context.Background(), RunQuery{
		WorkflowID: "wf-1",
		Status:     RunFailed,
		Limit:      25,
		Offset:     50,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "limit=25&offset=50&status=failed&workflowId=wf-1"
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestTagCache(t *testing.T) {
	cache := newTagCache(2, time.Minute)

	cache.set("/workflows", tagWorkflow, []byte("a"))
	cache.set("/runs", tagRun, []byte("b"))

	if body, ok := cache.get("/workflows"); !ok || string(body) != "a" {
		t.Fatalf("get = %q, %v", body, ok)
	}

	// /runs is now least recently used; a third entry evicts it.
	cache.set("/targets", tagTarget, []byte("c"))
	if _, ok := cache.get("/runs"); ok {
		t.Error("LRU eviction kept the least recently used entry")
	}
	if _, ok := cache.get("/workflows"); !ok {
		t.Error("LRU eviction dropped a recently used entry")
	}

	cache.invalidateTag(tagWorkflow)
	if _, ok := cache.get("/workflows"); ok {
		t.Error("tag invalidation left its entry behind")
	}
	if _, ok := cache.get("/targets"); !ok {
		t.Error("tag invalidation removed an unrelated tag's entry")
	}
}

func TestTagCacheTTL(t *testing.T) {
	cache := newTagCache(8, 10*time.Millisecond)
	cache.set("/health", tagSystem, []byte("ok"))

	if _, ok := cache.get("/health"); !ok {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.get("/health"); ok {
		t.Error("expired entry still served")
	}
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/service"
	"github.com/smartpublish/registry/internal/registry/storage/sqlite"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	bus := event.NewBus()
	t.Cleanup(bus.Close)
	locks := service.NewLockTable()

	h := &Handler{
		Contributors: service.NewContributorRegistry(store, bus, locks),
		Factory:      service.NewAssetFactory(store, bus, locks),
		Workflows:    service.NewPeerReviewWorkflow(store, bus, locks),
		Events:       store,
		Bus:          bus,
	}
	return NewRouter(h)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, identity string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if identity != "" {
		req.Header.Set(IdentityHeader, identity)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func createTestWorkflow(t *testing.T, r *gin.Engine, caller string) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/v1/workflows", caller, gin.H{"name": "peer review"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create workflow: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp WorkflowResponse
	decodeBody(t, w, &resp)
	return resp.ID
}

func paperRequest(workflowID string) gin.H {
	return gin.H{
		"title":                   "Generalized Atomic Commit",
		"abstract":                "We revisit commit protocols under partial failure.",
		"file_system_name":        "IPFS",
		"public_location":         "https://ipfs.io/ipfs/QmYHNY",
		"hash_algorithm":          "blake2b",
		"hash":                    "A8CFBBD73726062DF0C6864DDA65DEFE58EF0CC52A5625090FA17601E1EECD1B",
		"workflow_id":             workflowID,
		"external_contributor_id": "orcid:0000-0002-1825-0097",
	}
}

func createTestPaper(t *testing.T, r *gin.Engine, workflowID, caller string) PaperResponse {
	t.Helper()
	w := doJSON(t, r, "POST", "/v1/papers", caller, paperRequest(workflowID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create paper: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp PaperResponse
	decodeBody(t, w, &resp)
	return resp
}

func TestCreateContributor(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "POST", "/v1/contributors", "alice", gin.H{"external_id": "orcid:1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp ContributorResponse
	decodeBody(t, w, &resp)
	if resp.ExternalID != "orcid:1" || resp.CreatedBy != "alice" {
		t.Fatalf("unexpected response %+v", resp)
	}

	// Same external id again conflicts.
	w = doJSON(t, r, "POST", "/v1/contributors", "bob", gin.H{"external_id": "orcid:1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var errResp map[string]string
	decodeBody(t, w, &errResp)
	if errResp["code"] != "DUPLICATE_CONTRIBUTOR" {
		t.Fatalf("expected duplicate code, got %v", errResp)
	}
}

func TestCreateContributorRequiresIdentity(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(t, r, "POST", "/v1/contributors", "", gin.H{"external_id": "orcid:1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestResolveContributorIsIdempotent(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "POST", "/v1/contributors/resolve", "alice", gin.H{"external_id": "orcid:1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var first ResolveContributorResponse
	decodeBody(t, w, &first)
	if !first.Created {
		t.Fatal("expected first resolve to create")
	}

	w = doJSON(t, r, "POST", "/v1/contributors/resolve", "bob", gin.H{"external_id": "orcid:1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var second ResolveContributorResponse
	decodeBody(t, w, &second)
	if second.Created {
		t.Fatal("expected second resolve to reuse the record")
	}
	if second.Contributor.ID != first.Contributor.ID {
		t.Fatalf("expected stable id %s, got %s", first.Contributor.ID, second.Contributor.ID)
	}

	w = doJSON(t, r, "GET", "/v1/contributors/"+first.Contributor.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetContributorNotFound(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(t, r, "GET", "/v1/contributors/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreatePaperLifecycle(t *testing.T) {
	r := setupTestRouter(t)
	workflowID := createTestWorkflow(t, r, "editor")

	created := createTestPaper(t, r, workflowID, "alice")
	if created.State != "SUBMITTED" {
		t.Fatalf("expected submitted, got %s", created.State)
	}
	if created.Owner != "alice" {
		t.Fatalf("expected owner alice, got %s", created.Owner)
	}
	if len(created.Files) != 1 || len(created.Contributors) != 1 {
		t.Fatalf("expected one file and one author, got %+v", created)
	}

	// File descriptor by index.
	w := doJSON(t, r, "GET", fmt.Sprintf("/v1/papers/%s/files/0", created.Address), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var file FileResponse
	decodeBody(t, w, &file)
	if file.FileSystemName != "IPFS" || file.HashAlgorithm != "blake2b" {
		t.Fatalf("unexpected file %+v", file)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/v1/papers/%s/files/5", created.Address), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out-of-range index, got %d", w.Code)
	}

	// Creator index.
	w = doJSON(t, r, "GET", "/v1/papers?creator=alice", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listing struct {
		Assets []string `json:"assets"`
	}
	decodeBody(t, w, &listing)
	if len(listing.Assets) != 1 || listing.Assets[0] != created.Address {
		t.Fatalf("expected [%s], got %v", created.Address, listing.Assets)
	}
}

func TestCreatePaperValidationAndUnknownWorkflow(t *testing.T) {
	r := setupTestRouter(t)
	workflowID := createTestWorkflow(t, r, "editor")

	body := paperRequest(workflowID)
	body["title"] = "  "
	w := doJSON(t, r, "POST", "/v1/papers", "alice", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/v1/papers", "alice", paperRequest("missing"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTransitionFlow(t *testing.T) {
	r := setupTestRouter(t)
	workflowID := createTestWorkflow(t, r, "editor")

	grant := func(identity, role string) {
		w := doJSON(t, r, "POST", "/v1/workflows/"+workflowID+"/roles", "editor", gin.H{"identity": identity, "role": role})
		if w.Code != http.StatusOK {
			t.Fatalf("grant %s: expected 200, got %d: %s", role, w.Code, w.Body.String())
		}
	}
	grant("reviewer-1", "reviewer")
	grant("editor", "decision-maker")

	created := createTestPaper(t, r, workflowID, "alice")

	// Unauthorized actor.
	w := doJSON(t, r, "POST", "/v1/papers/"+created.Address+"/transitions", "mallory", gin.H{"action": "review"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Review twice, then accept.
	for round := 1; round <= 2; round++ {
		w = doJSON(t, r, "POST", "/v1/papers/"+created.Address+"/transitions", "reviewer-1", gin.H{"action": "review"})
		if w.Code != http.StatusOK {
			t.Fatalf("review %d: expected 200, got %d: %s", round, w.Code, w.Body.String())
		}
		var resp applyTransitionResponse
		decodeBody(t, w, &resp)
		if resp.State != "UNDER_REVIEW" || resp.ReviewCount != round {
			t.Fatalf("review %d: unexpected response %+v", round, resp)
		}
	}

	// Invalid transition from a decision-maker: reject then act again.
	w = doJSON(t, r, "POST", "/v1/papers/"+created.Address+"/transitions", "editor", gin.H{"action": "accept"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, "POST", "/v1/papers/"+created.Address+"/transitions", "editor", gin.H{"action": "reject"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 after terminal state, got %d: %s", w.Code, w.Body.String())
	}

	// History carries all three applied transitions.
	w = doJSON(t, r, "GET", "/v1/papers/"+created.Address+"/transitions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var history struct {
		Transitions []TransitionResponse `json:"transitions"`
	}
	decodeBody(t, w, &history)
	if len(history.Transitions) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(history.Transitions))
	}
	for index, entry := range history.Transitions {
		if entry.Seq != uint64(index+1) {
			t.Fatalf("expected seq %d, got %d", index+1, entry.Seq)
		}
	}

	// State query reflects the terminal state.
	w = doJSON(t, r, "GET", "/v1/workflows/"+workflowID+"/assets?state=ACCEPTED", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("assets by state: expected 200, got %d", w.Code)
	}
	var byState struct {
		Assets []string `json:"assets"`
	}
	decodeBody(t, w, &byState)
	if len(byState.Assets) != 1 || byState.Assets[0] != created.Address {
		t.Fatalf("expected [%s], got %v", created.Address, byState.Assets)
	}
}

func TestAssignRoleRequiresAdmin(t *testing.T) {
	r := setupTestRouter(t)
	workflowID := createTestWorkflow(t, r, "editor")

	w := doJSON(t, r, "POST", "/v1/workflows/"+workflowID+"/roles", "mallory", gin.H{"identity": "x", "role": "reviewer"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/v1/workflows/"+workflowID+"/roles", "editor", gin.H{"identity": "x", "role": "owner"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListEvents(t *testing.T) {
	r := setupTestRouter(t)
	workflowID := createTestWorkflow(t, r, "editor")
	createTestPaper(t, r, workflowID, "alice")

	w := doJSON(t, r, "GET", "/v1/events?after_seq=0&limit=10", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Events []EventResponse `json:"events"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("expected contributor.created and asset.created, got %d events", len(resp.Events))
	}
	if resp.Events[0].Type != "contributor.created" || resp.Events[1].Type != "asset.created" {
		t.Fatalf("unexpected event order: %s, %s", resp.Events[0].Type, resp.Events[1].Type)
	}
	if resp.Events[1].Seq <= resp.Events[0].Seq {
		t.Fatal("expected increasing sequences")
	}

	w = doJSON(t, r, "GET", "/v1/events?after_seq=bad", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cursor, got %d", w.Code)
	}
}

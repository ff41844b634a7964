package kg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kgfoundry/biomapper/internal/httpcache"
	"github.com/kgfoundry/biomapper/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		RequestsPerSec: 1000,
		Burst:          100,
	})
	return client, srv
}

func TestCanonicalizeBulk(t *testing.T) {
	var gotPath string
	var gotKey string
	var gotPayload map[string][]string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"KEGG.COMPOUND:C00487":   "CHEBI:17126",
			"PUBCHEM.COMPOUND:10917": []string{"CHEBI:17126", "CHEBI:16347"},
			"HMDB:HMDB0000062":       nil,
		})
	}))

	results, err := client.Canonicalize(context.Background(), []string{
		"PUBCHEM.COMPOUND:10917", "KEGG.COMPOUND:C00487", "HMDB:HMDB0000062",
	})
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}

	if gotPath != "/canonicalize" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("API key header not sent, got %q", gotKey)
	}

	// Payload curies must be sorted for stable cache keys.
	want := []string{"HMDB:HMDB0000062", "KEGG.COMPOUND:C00487", "PUBCHEM.COMPOUND:10917"}
	if len(gotPayload["curies"]) != 3 {
		t.Fatalf("unexpected payload: %v", gotPayload)
	}
	for i, curie := range want {
		if gotPayload["curies"][i] != curie {
			t.Errorf("payload not sorted: got %v", gotPayload["curies"])
			break
		}
	}

	if len(results["KEGG.COMPOUND:C00487"]) != 1 || results["KEGG.COMPOUND:C00487"][0] != "CHEBI:17126" {
		t.Errorf("single-node result mishandled: %v", results["KEGG.COMPOUND:C00487"])
	}
	if len(results["PUBCHEM.COMPOUND:10917"]) != 2 {
		t.Errorf("multi-node result mishandled: %v", results["PUBCHEM.COMPOUND:10917"])
	}
	if _, ok := results["HMDB:HMDB0000062"]; ok {
		t.Error("null-mapped curie should be absent from results")
	}
}

func TestCanonicalizeEmptyInputSkipsRemoteCall(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	results, err := client.Canonicalize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %v", results)
	}
	if called {
		t.Error("empty input must not issue a remote call")
	}
}

func TestHTTPErrorYieldsRemoteSourceError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.Canonicalize(context.Background(), []string{"CHEBI:17234"})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}

	var remoteErr *types.RemoteSourceError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteSourceError, got %T: %v", err, err)
	}
	if remoteErr.Source != SourceSlug {
		t.Errorf("unexpected source slug: %s", remoteErr.Source)
	}
	if remoteErr.Op != "canonicalize" {
		t.Errorf("unexpected op: %s", remoteErr.Op)
	}
}

func TestTextSearch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]SearchHit{{ID: "CHEBI:17126", Score: 4.2}})
	}))

	hits, err := client.TextSearch(context.Background(), "carnitine", 1)
	if err != nil {
		t.Fatalf("TextSearch failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "CHEBI:17126" {
		t.Errorf("unexpected hits: %v", hits)
	}
}

func TestHybridSearchSortsTerms(t *testing.T) {
	var gotPayload struct {
		SearchText []string `json:"search_text"`
		Category   string   `json:"category_filter"`
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string][]SearchHit{
			"carnitine": {{ID: "CHEBI:17126", Score: 3.1}},
			"alanine":   {{ID: "CHEBI:16449", Score: 2.8}},
		})
	}))

	results, err := client.HybridSearch(context.Background(),
		[]string{"carnitine", "alanine"}, "biolink:SmallMolecule", nil, 1)
	if err != nil {
		t.Fatalf("HybridSearch failed: %v", err)
	}

	if len(gotPayload.SearchText) != 2 || gotPayload.SearchText[0] != "alanine" {
		t.Errorf("search text not sorted: %v", gotPayload.SearchText)
	}
	if gotPayload.Category != "biolink:SmallMolecule" {
		t.Errorf("category filter not sent: %s", gotPayload.Category)
	}
	if len(results["carnitine"]) != 1 {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestCachedCanonicalizeHitsRemoteOnce(t *testing.T) {
	cache, err := httpcache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("cache open failed: %v", err)
	}
	defer cache.Close()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]string{"CHEBI:17234": "CHEBI:17234"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, RequestsPerSec: 1000, Burst: 100, Cache: cache})

	for i := 0; i < 3; i++ {
		// Different input order, same curie set: must share one cache entry.
		curies := []string{"CHEBI:17234"}
		if _, err := client.Canonicalize(context.Background(), curies); err != nil {
			t.Fatalf("Canonicalize failed: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 remote call with cache enabled, got %d", calls)
	}
}

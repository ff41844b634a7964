package annotate

import (
	"context"
	"testing"

	"github.com/kgfoundry/biomapper/internal/kg"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// fakeSearchClient serves canned hits and records queries.
type fakeSearchClient struct {
	textHits    map[string][]kg.SearchHit
	hybridHits  map[string][]kg.SearchHit
	textCalls   int
	hybridCalls int
	gotCategory string
	gotTerms    []string
}

func (f *fakeSearchClient) TextSearch(ctx context.Context, term string, limit int) ([]kg.SearchHit, error) {
	f.textCalls++
	return f.textHits[term], nil
}

func (f *fakeSearchClient) HybridSearch(ctx context.Context, terms []string, category string, prefixes []string, limit int) (map[string][]kg.SearchHit, error) {
	f.hybridCalls++
	f.gotCategory = category
	f.gotTerms = terms
	return f.hybridHits, nil
}

func TestKestrelTextAnnotateReturnsHitIDs(t *testing.T) {
	client := &fakeSearchClient{textHits: map[string][]kg.SearchHit{
		"carnitine": {{ID: "CHEBI:17126", Score: 4.2}, {ID: "CHEBI:16347", Score: 1.1}},
	}}
	a := NewKestrelText(client, SearchConfig{})

	entity := types.NewEntity("metabolite", map[string]any{"name": "carnitine"})
	evidence, err := a.Annotate(context.Background(), entity)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	ids := evidence["id"]
	if len(ids) != 2 || ids[0] != "CHEBI:17126" {
		t.Errorf("unexpected evidence: %v", evidence)
	}
}

func TestKestrelTextBulkDeduplicatesNames(t *testing.T) {
	client := &fakeSearchClient{textHits: map[string][]kg.SearchHit{
		"carnitine": {{ID: "CHEBI:17126", Score: 4.2}},
	}}
	a := NewKestrelText(client, SearchConfig{})

	entities := []types.Entity{
		types.NewEntity("metabolite", map[string]any{"name": "carnitine"}),
		types.NewEntity("metabolite", map[string]any{"name": "carnitine"}),
	}
	results, err := a.AnnotateBulk(context.Background(), entities)
	if err != nil {
		t.Fatalf("AnnotateBulk failed: %v", err)
	}
	if client.textCalls != 1 {
		t.Errorf("expected 1 search for duplicate names, got %d", client.textCalls)
	}
	if len(results) != 2 || len(results[0]["id"]) != 1 || len(results[1]["id"]) != 1 {
		t.Errorf("results not aligned: %v", results)
	}
}

func TestKestrelHybridFiltersLowScores(t *testing.T) {
	client := &fakeSearchClient{hybridHits: map[string][]kg.SearchHit{
		"carnitine": {
			{ID: "CHEBI:17126", Score: 0.93},
			{ID: "CHEBI:16347", Score: 0.5},
			{ID: "CHEBI:99999", Score: 0.49},
		},
	}}
	a := NewKestrelHybrid(client, SearchConfig{})

	entity := types.NewEntity("metabolite", map[string]any{"name": "carnitine"})
	evidence, err := a.Annotate(context.Background(), entity)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	ids := evidence["id"]
	if len(ids) != 2 {
		t.Fatalf("expected hits below 0.5 filtered, got %v", ids)
	}
	for _, id := range ids {
		if id == "CHEBI:99999" {
			t.Error("sub-threshold hit survived the filter")
		}
	}
}

func TestKestrelHybridBulkSingleCallWithCategory(t *testing.T) {
	client := &fakeSearchClient{hybridHits: map[string][]kg.SearchHit{
		"carnitine": {{ID: "CHEBI:17126", Score: 0.9}},
		"alanine":   {{ID: "CHEBI:16449", Score: 0.8}},
	}}
	a := NewKestrelHybrid(client, SearchConfig{})

	entities := []types.Entity{
		types.NewEntity("metabolite", map[string]any{"name": "carnitine"}),
		types.NewEntity("metabolite", map[string]any{"name": "alanine"}),
		types.NewEntity("metabolite", map[string]any{"name": "carnitine"}),
	}
	results, err := a.AnnotateBulk(context.Background(), entities)
	if err != nil {
		t.Fatalf("AnnotateBulk failed: %v", err)
	}

	if client.hybridCalls != 1 {
		t.Errorf("expected one hybrid call for the batch, got %d", client.hybridCalls)
	}
	if client.gotCategory != "biolink:SmallMolecule" {
		t.Errorf("category filter not derived from entity type: %q", client.gotCategory)
	}
	if len(client.gotTerms) != 2 {
		t.Errorf("duplicate names not deduplicated: %v", client.gotTerms)
	}
	if results[0]["id"][0] != "CHEBI:17126" || results[1]["id"][0] != "CHEBI:16449" || results[2]["id"][0] != "CHEBI:17126" {
		t.Errorf("results not demultiplexed by name: %v", results)
	}
}

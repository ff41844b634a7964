package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kgfoundry/biomapper/internal/annotate"
	"github.com/kgfoundry/biomapper/internal/kg"
	"github.com/kgfoundry/biomapper/internal/link"
	"github.com/kgfoundry/biomapper/internal/normalize"
	"github.com/kgfoundry/biomapper/internal/resolve"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// newE2EMapper wires a full pipeline against stub Workbench and Kestrel
// servers. The Kestrel stub canonicalizes every requested curie to the same
// node, CHEBI:17126.
func newE2EMapper(t *testing.T) *Mapper {
	t.Helper()

	workbench := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"refmet_id":"RM0008951","inchi_key":"PHIQHXFUZVPYII-ZCFIWIBFSA-N","pubchem_cid":10917}`)
	}))
	t.Cleanup(workbench.Close)

	kestrel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			CURIEs []string `json:"curies"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		response := make(map[string]string, len(payload.CURIEs))
		for _, curie := range payload.CURIEs {
			response[curie] = "CHEBI:17126"
		}
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(kestrel.Close)

	registry := annotate.NewRegistry()
	if err := registry.Register(annotate.NewWorkbench(annotate.WorkbenchConfig{
		BaseURL:        workbench.URL,
		RequestsPerSec: 1000,
		Burst:          100,
	})); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	engine, err := annotate.NewEngine(registry, annotate.EngineOptions{
		Types: map[string][]string{"metabolite": {annotate.WorkbenchSlug}},
		Mode:  annotate.ModeAll,
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	client := kg.NewClient(kg.Config{BaseURL: kestrel.URL, RequestsPerSec: 1000, Burst: 100})
	return New(engine, normalize.New(normalize.Options{}), link.New(client, nil), resolve.New(), nil)
}

func TestMapEntityEndToEnd(t *testing.T) {
	m := newE2EMapper(t)

	entity := types.NewEntity("metabolite", map[string]any{
		"name":    "carnitine",
		"kegg":    []string{"C00487"},
		"pubchem": "10917",
	})

	result, err := m.MapEntity(context.Background(), entity, []string{"kegg", "pubchem"})
	if err != nil {
		t.Fatalf("MapEntity failed: %v", err)
	}

	overall := result.Resolution.Overall
	if overall.Status != types.StatusResolved {
		t.Fatalf("expected resolved, got %s", overall.Status)
	}
	if overall.NodeID != "CHEBI:17126" {
		t.Errorf("wrong canonical node: %s", overall.NodeID)
	}
	// Provided (kegg, pubchem) and assigned (refmet, inchikey, pubchem)
	// evidence independently point at the node.
	if overall.Votes < 2 {
		t.Errorf("expected at least 2 distinct supporting curies, got %d", overall.Votes)
	}
	if result.Resolution.Provided.Status != types.StatusResolved {
		t.Errorf("provided sub-resolution: %+v", result.Resolution.Provided)
	}
	if result.Resolution.Assigned.Status != types.StatusResolved {
		t.Errorf("assigned sub-resolution: %+v", result.Resolution.Assigned)
	}

	// Raw workbench evidence must be retained untouched in provenance.
	evidence := result.Assigned[annotate.WorkbenchSlug]
	if got := evidence["refmet_id"]; len(got) != 1 || got[0] != "RM0008951" {
		t.Errorf("raw evidence altered: %v", evidence)
	}
}

func TestMapDatasetEndToEnd(t *testing.T) {
	m := newE2EMapper(t)

	entities := []types.Entity{
		types.NewEntity("metabolite", map[string]any{"name": "carnitine", "kegg": "C00487"}),
		types.NewEntity("metabolite", map[string]any{"name": "acetylcarnitine", "kegg": "C02571"}),
	}

	results, failures, err := m.MapDataset(context.Background(), entities, "metabolite", []string{"kegg"})
	if err != nil {
		t.Fatalf("MapDataset failed: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("unexpected row failures: %v", failures)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Resolution.Overall.Status != types.StatusResolved {
			t.Errorf("row %d not resolved: %+v", i, result.Resolution.Overall)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	m := &Mapper{resolver: resolve.New()}

	resolved := func(node string, providedNode, assignedNode string) types.MappingResult {
		r := types.MappingResult{
			IDs: types.NormalizedIDSet{
				Provided: []types.CURIE{{Prefix: "KEGG", LocalID: "C00487"}},
			},
			Candidates: types.CandidateSet{Nodes: types.NodeSupport{node: {"KEGG:C00487"}}},
			Resolution: types.ResolutionResult{
				Overall: types.Resolution{Status: types.StatusResolved, NodeID: node, Votes: 1},
			},
		}
		if providedNode != "" {
			r.Resolution.Provided = types.Resolution{Status: types.StatusResolved, NodeID: providedNode}
		} else {
			r.Resolution.Provided = types.Resolution{Status: types.StatusUnresolved}
		}
		if assignedNode != "" {
			r.IDs.Assigned = map[string][]types.CURIE{"workbench": {{Prefix: "RM", LocalID: "0000001"}}}
			r.Resolution.Assigned = types.Resolution{Status: types.StatusResolved, NodeID: assignedNode}
		} else {
			r.Resolution.Assigned = types.Resolution{Status: types.StatusUnresolved}
		}
		return r
	}

	results := []types.MappingResult{
		resolved("CHEBI:1", "CHEBI:1", "CHEBI:1"), // both origins agree
		resolved("CHEBI:2", "CHEBI:2", "CHEBI:9"), // both mapped, disagree
		resolved("CHEBI:3", "CHEBI:3", ""),        // provided only
		{ // unresolved row with an invalid ID
			IDs: types.NormalizedIDSet{
				DroppedProvided: []types.DroppedID{{Field: "kegg", Value: "bad", Reason: types.DropInvalidFormat}},
			},
			Resolution: types.ResolutionResult{
				Overall:  types.Resolution{Status: types.StatusUnresolved},
				Provided: types.Resolution{Status: types.StatusUnresolved},
				Assigned: types.Resolution{Status: types.StatusUnresolved},
			},
		},
	}
	failures := []types.RowFailure{{Row: 9, Reason: "annotation aborted"}}

	stats := m.Summarize("plasma.tsv", "metabolite", results, failures)

	if stats.TotalItems != 5 {
		t.Errorf("TotalItems: got %d, want 5", stats.TotalItems)
	}
	if stats.MappedToKG != 3 || stats.Resolved != 3 || stats.Unresolved != 1 {
		t.Errorf("resolution counts wrong: %+v", stats)
	}
	if stats.MappedBoth != 2 || stats.AssignedAgreeing != 1 {
		t.Errorf("agreement counts wrong: both=%d agreeing=%d", stats.MappedBoth, stats.AssignedAgreeing)
	}
	if stats.HasInvalidIDs != 1 || stats.InvalidAndUnmapped != 1 {
		t.Errorf("invalid-id counts wrong: %+v", stats)
	}
	if stats.OneToOneMappings != 3 {
		t.Errorf("expected 3 one-to-one mappings, got %d", stats.OneToOneMappings)
	}
	if stats.RunID == "" {
		t.Error("RunID not assigned")
	}

	// Precision = agreeing / both mapped; recall = agreeing / provided
	// mapped.
	if v := stats.Performance.AssignedPrecision.Value; v == nil || *v != 0.5 {
		t.Errorf("precision wrong: %v", stats.Performance.AssignedPrecision)
	}
	if v := stats.Performance.Coverage.Value; v == nil || *v != 0.6 {
		t.Errorf("coverage wrong: %v", stats.Performance.Coverage)
	}
}

func TestSummarizeEmptyDatasetHasNilRatios(t *testing.T) {
	m := &Mapper{resolver: resolve.New()}

	stats := m.Summarize("empty.tsv", "metabolite", nil, nil)
	if stats.TotalItems != 0 {
		t.Errorf("TotalItems: got %d", stats.TotalItems)
	}
	if stats.Performance.Coverage.Value != nil {
		t.Error("coverage over zero rows must be nil, not zero")
	}
}

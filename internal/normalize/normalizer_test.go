package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kgfoundry/biomapper/pkg/types"
)

func TestNormalizeFieldEmitsOneCurieForValidValues(t *testing.T) {
	n := New(Options{})

	cases := []struct {
		field string
		value string
		want  string
	}{
		{"kegg", "C00487", "KEGG:C00487"},
		{"kegg_compound_id", "C00487", "KEGG.COMPOUND:C00487"},
		{"pubchem", "10917", "PUBCHEM.COMPOUND:10917"},
		{"pubchem_cid", "10917.0", "PUBCHEM.COMPOUND:10917"},
		{"chebi", "17126", "CHEBI:17126"},
		{"hmdb", "HMDB00062", "HMDB:HMDB0000062"},
		{"hmdb", "HMDBHMDB0000062", "HMDB:HMDB0000062"},
		{"inchi_key", "PHIQHXFUZVPYII-ZCFIWIBFSA-N", "INCHIKEY:PHIQHXFUZVPYII-ZCFIWIBFSA-N"},
		{"lipidmaps", "LMFA07070060", "LIPIDMAPS:FA07070060"},
		{"refmet_id", "RM0008951", "RM:0008951"},
		{"swisslipids", "SLM:000000651", "SLM:000000651"},
		{"uniprot", "P04150", "UniProtKB:P04150"},
		{"entrez_id", "2908", "NCBIGene:2908"},
		{"wikipathways", "WP554_r123456", "WIKIPATHWAYS:WP554"},
		{"zip", "1234", "USZIPCODE:01234"},
		{"smiles", "CC(=O)OC(CC(=O)[O-])C[N+](C)(C)C", "SMILES:CC(=O)OC(CC(=O)[O-])C[N+](C)(C)C"},
	}

	for _, tc := range cases {
		curies, dropped := n.NormalizeField(tc.field, []string{tc.value})
		if len(dropped) != 0 {
			t.Errorf("%s=%q: unexpected drops %v", tc.field, tc.value, dropped)
			continue
		}
		if len(curies) != 1 {
			t.Errorf("%s=%q: want exactly 1 curie, got %v", tc.field, tc.value, curies)
			continue
		}
		if got := curies[0].String(); got != tc.want {
			t.Errorf("%s=%q: got %s, want %s", tc.field, tc.value, got, tc.want)
		}
	}
}

func TestNormalizeFieldIsIdempotent(t *testing.T) {
	n := New(Options{})

	inputs := map[string]string{
		"kegg":    "C00487",
		"pubchem": "10917",
		"hmdb":    "HMDB00062",
		"refmet":  "RM0008951",
	}

	for field, value := range inputs {
		first, _ := n.NormalizeField(field, []string{value})
		if len(first) != 1 {
			t.Fatalf("%s=%q: expected 1 curie, got %v", field, value, first)
		}
		// Feed the canonical curie string back through the same field.
		second, dropped := n.NormalizeField(field, []string{first[0].String()})
		if len(dropped) != 0 {
			t.Errorf("%s: re-normalizing %s dropped: %v", field, first[0], dropped)
			continue
		}
		if len(second) != 1 || second[0] != first[0] {
			t.Errorf("%s: re-normalizing %s yielded %v", field, first[0], second)
		}
	}
}

func TestNormalizeFieldDropsInvalidValues(t *testing.T) {
	n := New(Options{})

	cases := []struct {
		field string
		value string
	}{
		{"kegg", "X99999"},
		{"chebi", "not-a-number"},
		{"hmdb", "HMDB12"},
		{"inchikey", "TOO-SHORT"},
		{"cas", "12345"},
	}

	for _, tc := range cases {
		curies, dropped := n.NormalizeField(tc.field, []string{tc.value})
		if len(curies) != 0 {
			t.Errorf("%s=%q: expected no curies, got %v", tc.field, tc.value, curies)
		}
		if len(dropped) != 1 {
			t.Errorf("%s=%q: expected 1 drop record, got %v", tc.field, tc.value, dropped)
			continue
		}
		drop := dropped[0]
		if drop.Field != tc.field || drop.Value != tc.value || drop.Reason != types.DropInvalidFormat {
			t.Errorf("%s=%q: bad drop record %+v", tc.field, tc.value, drop)
		}
	}
}

func TestNormalizeFieldSplitsDelimitedValues(t *testing.T) {
	n := New(Options{})

	curies, dropped := n.NormalizeField("kegg", []string{"C00487; C00123,C00024"})
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	want := []string{"KEGG:C00487", "KEGG:C00123", "KEGG:C00024"}
	if len(curies) != len(want) {
		t.Fatalf("expected %d curies, got %v", len(want), curies)
	}
	for i, w := range want {
		if curies[i].String() != w {
			t.Errorf("curie %d: got %s, want %s", i, curies[i], w)
		}
	}
}

func TestNormalizeFieldDecodesListLiterals(t *testing.T) {
	n := New(Options{})

	curies, _ := n.NormalizeField("kegg", []string{`["C00487", "C00123"]`})
	if len(curies) != 2 {
		t.Fatalf("expected 2 curies from list literal, got %v", curies)
	}
}

func TestNormalizeFieldSkipsPlaceholders(t *testing.T) {
	n := New(Options{})

	curies, dropped := n.NormalizeField("kegg", []string{"", "  ", "-", "—"})
	if len(curies) != 0 || len(dropped) != 0 {
		t.Errorf("placeholders must produce nothing: curies=%v dropped=%v", curies, dropped)
	}
}

func TestNormalizeEntityPartitionsByOrigin(t *testing.T) {
	n := New(Options{})

	entity := types.NewEntity("metabolite", map[string]any{
		"name":    "carnitine",
		"kegg":    []string{"C00487"},
		"pubchem": "10917",
		"mystery": "zzz",
	})
	assigned := types.AssignedIDs{
		"workbench": {
			"pubchem_cid": {"10917"},
			"inchi_key":   {"PHIQHXFUZVPYII-ZCFIWIBFSA-N"},
		},
	}

	ids := n.NormalizeEntity(entity, []string{"kegg", "pubchem", "mystery"}, assigned)

	if len(ids.Provided) != 2 {
		t.Fatalf("expected 2 provided curies, got %v", ids.Provided)
	}
	if len(ids.UnrecognizedProvided) != 1 || ids.UnrecognizedProvided[0] != "mystery" {
		t.Errorf("expected mystery field recorded as unrecognized, got %v", ids.UnrecognizedProvided)
	}

	workbench := ids.Assigned["workbench"]
	if len(workbench) != 2 {
		t.Fatalf("expected 2 assigned curies, got %v", workbench)
	}

	// The same curie appears in both origins; it must stay in both.
	found := false
	for _, c := range workbench {
		if c.String() == "PUBCHEM.COMPOUND:10917" {
			found = true
		}
	}
	if !found {
		t.Error("assigned partition lost a curie duplicated in provided")
	}
	all := ids.All()
	if len(all) != 3 {
		t.Errorf("expected 3 distinct curies overall, got %v", all)
	}
}

func TestNormalizeEntityResolvesCurieFormEvidence(t *testing.T) {
	n := New(Options{})

	// Search annotators report hits under a generic "id" field with the
	// node's own curie; the value's prefix must carry the vocabulary.
	assigned := types.AssignedIDs{
		"kestrel-text": {"id": {"CHEBI:17126"}},
	}
	entity := types.NewEntity("metabolite", map[string]any{"name": "carnitine"})

	ids := n.NormalizeEntity(entity, nil, assigned)
	curies := ids.Assigned["kestrel-text"]
	if len(curies) != 1 || curies[0].String() != "CHEBI:17126" {
		t.Fatalf("curie-form evidence not normalized: %v", curies)
	}
	if len(ids.UnrecognizedAssigned) != 0 {
		t.Errorf("field with curie values must not be unrecognized: %v", ids.UnrecognizedAssigned)
	}
}

func TestNormalizeEntityDeduplicatesWithinOrigin(t *testing.T) {
	n := New(Options{})

	entity := types.NewEntity("metabolite", map[string]any{
		"kegg":         "C00487",
		"kegg_curated": "KEGG:C00487",
	})
	ids := n.NormalizeEntity(entity, []string{"kegg", "kegg_curated"}, nil)
	if len(ids.Provided) != 1 {
		t.Errorf("expected duplicate provided curies collapsed, got %v", ids.Provided)
	}
}

func TestLoadOverridesExtendsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	yaml := `
vocabularies:
  mylab:
    prefix: MYLAB
    pattern: '^[A-Z]\d{4}$'
    strip_prefixes: [ML]
    aliases: [ml]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}
	n := New(Options{Overrides: overrides})

	curies, dropped := n.NormalizeField("ml", []string{"MLA1234"})
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(curies) != 1 || curies[0].String() != "MYLAB:A1234" {
		t.Errorf("override vocabulary not applied: %v", curies)
	}
}

func TestLoadOverridesRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	yaml := `
vocabularies:
  broken:
    prefix: BROKEN
    pattern: '['
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOverrides(path); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

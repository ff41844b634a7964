package annotate

import (
	"context"
	"sort"

	"github.com/kgfoundry/biomapper/internal/kg"
	"github.com/kgfoundry/biomapper/pkg/types"
)

// Slugs for the knowledge graph search annotators.
const (
	KestrelTextSlug   = "kestrel-text"
	KestrelHybridSlug = "kestrel-hybrid"
)

// minHybridScore is the relevance floor for hybrid search hits; weaker
// matches are noise rather than evidence.
const minHybridScore = 0.5

// defaultSearchLimit caps hits per entity.
const defaultSearchLimit = 5

// SearchClient is the slice of the KG client the search annotators use.
type SearchClient interface {
	TextSearch(ctx context.Context, term string, limit int) ([]kg.SearchHit, error)
	HybridSearch(ctx context.Context, terms []string, category string, prefixes []string, limit int) (map[string][]kg.SearchHit, error)
}

// biolinkCategories maps an entity type to the Biolink category used to
// filter hybrid search.
var biolinkCategories = map[string]string{
	"metabolite": "biolink:SmallMolecule",
	"lipid":      "biolink:SmallMolecule",
	"drug":       "biolink:Drug",
	"protein":    "biolink:Protein",
	"gene":       "biolink:Gene",
	"disease":    "biolink:Disease",
	"pathway":    "biolink:Pathway",
}

// SearchConfig configures a KG search annotator.
type SearchConfig struct {
	// NameField is the entity field used as the search term (default:
	// "name").
	NameField string

	// Limit caps hits per entity (default: defaultSearchLimit).
	Limit int
}

func (c *SearchConfig) applyDefaults() {
	if c.NameField == "" {
		c.NameField = "name"
	}
	if c.Limit == 0 {
		c.Limit = defaultSearchLimit
	}
}

// KestrelText annotates entities with node IDs from the KG's free-text
// search. Hits come back under the source's own "id" field, curie-form, for
// the Normalizer to interpret.
type KestrelText struct {
	client    SearchClient
	nameField string
	limit     int
}

var _ Annotator = (*KestrelText)(nil)

// NewKestrelText creates a text-search annotator over the KG client.
func NewKestrelText(client SearchClient, config SearchConfig) *KestrelText {
	config.applyDefaults()
	return &KestrelText{client: client, nameField: config.NameField, limit: config.Limit}
}

// Slug implements Annotator.
func (a *KestrelText) Slug() string { return KestrelTextSlug }

// Annotate searches the KG for the entity's name.
func (a *KestrelText) Annotate(ctx context.Context, entity types.Entity) (types.RawEvidence, error) {
	name := entity.Text(a.nameField)
	if name == "" {
		return types.RawEvidence{}, nil
	}

	hits, err := a.client.TextSearch(ctx, name, a.limit)
	if err != nil {
		return nil, err
	}
	return hitsToEvidence(hits, 0), nil
}

// AnnotateBulk searches per distinct name; the text-search endpoint has no
// batch form, so deduplication is the only bulk saving.
func (a *KestrelText) AnnotateBulk(ctx context.Context, entities []types.Entity) ([]types.RawEvidence, error) {
	byName := make(map[string]types.RawEvidence)
	results := make([]types.RawEvidence, len(entities))

	for i, entity := range entities {
		name := entity.Text(a.nameField)
		if name == "" {
			results[i] = types.RawEvidence{}
			continue
		}
		evidence, seen := byName[name]
		if !seen {
			hits, err := a.client.TextSearch(ctx, name, a.limit)
			if err != nil {
				return nil, err
			}
			evidence = hitsToEvidence(hits, 0)
			byName[name] = evidence
		}
		results[i] = evidence.Clone()
	}
	return results, nil
}

// KestrelHybrid annotates entities with node IDs from the KG's combined
// text/vector search, filtered to the entity type's Biolink category and to
// hits scoring at least minHybridScore.
type KestrelHybrid struct {
	client    SearchClient
	nameField string
	limit     int
}

var _ Annotator = (*KestrelHybrid)(nil)

// NewKestrelHybrid creates a hybrid-search annotator over the KG client.
func NewKestrelHybrid(client SearchClient, config SearchConfig) *KestrelHybrid {
	config.applyDefaults()
	return &KestrelHybrid{client: client, nameField: config.NameField, limit: config.Limit}
}

// Slug implements Annotator.
func (a *KestrelHybrid) Slug() string { return KestrelHybridSlug }

// Annotate runs one hybrid search for the entity's name.
func (a *KestrelHybrid) Annotate(ctx context.Context, entity types.Entity) (types.RawEvidence, error) {
	results, err := a.AnnotateBulk(ctx, []types.Entity{entity})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// AnnotateBulk dispatches the whole batch as one hybrid search call and
// demultiplexes the per-term results back to entities by name.
func (a *KestrelHybrid) AnnotateBulk(ctx context.Context, entities []types.Entity) ([]types.RawEvidence, error) {
	seen := make(map[string]bool)
	var names []string
	category := ""
	for _, entity := range entities {
		name := entity.Text(a.nameField)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if category == "" {
			category = biolinkCategories[entity.Type]
		}
	}

	results := make([]types.RawEvidence, len(entities))
	if len(names) == 0 {
		for i := range results {
			results[i] = types.RawEvidence{}
		}
		return results, nil
	}
	sort.Strings(names)

	hitsByTerm, err := a.client.HybridSearch(ctx, names, category, nil, a.limit)
	if err != nil {
		return nil, err
	}

	for i, entity := range entities {
		name := entity.Text(a.nameField)
		if name == "" {
			results[i] = types.RawEvidence{}
			continue
		}
		results[i] = hitsToEvidence(hitsByTerm[name], minHybridScore)
	}
	return results, nil
}

// hitsToEvidence renders search hits as raw evidence under the source's "id"
// field, keeping only hits at or above the score floor.
func hitsToEvidence(hits []kg.SearchHit, minScore float64) types.RawEvidence {
	var ids []string
	for _, hit := range hits {
		if hit.Score < minScore || hit.ID == "" {
			continue
		}
		ids = append(ids, hit.ID)
	}
	if len(ids) == 0 {
		return types.RawEvidence{}
	}
	return types.RawEvidence{"id": ids}
}

// Package annotate gathers extra identifier evidence for entities from
// external sources before normalization. Annotators are plugins behind a
// fixed interface; the engine dispatches them per entity type and applies the
// configured failure policy.
//
// Annotators return evidence with raw field names and values exactly as the
// external source provides them. Renaming fields, stripping prefixes, or any
// other identifier cleanup is the Normalizer's job, never an annotator's.
package annotate

import (
	"context"
	"sort"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// Annotator discovers raw identifier evidence for entities from one external
// source.
type Annotator interface {
	// Slug returns the annotator's unique identifier, used as the evidence
	// key in AssignedIDs and in provenance.
	Slug() string

	// Annotate fetches evidence for one entity. A missing or empty query
	// name returns empty evidence without a remote call. Remote failures
	// surface as a *types.RemoteSourceError.
	Annotate(ctx context.Context, entity types.Entity) (types.RawEvidence, error)

	// AnnotateBulk fetches evidence for a batch, returning one evidence
	// mapping per input entity in input order. Implementations deduplicate
	// identical query keys internally so duplicates share one remote call.
	AnnotateBulk(ctx context.Context, entities []types.Entity) ([]types.RawEvidence, error)
}

// Registry holds the available annotators keyed by slug.
type Registry struct {
	annotators map[string]Annotator
}

// NewRegistry creates an empty annotator registry.
func NewRegistry() *Registry {
	return &Registry{annotators: make(map[string]Annotator)}
}

// Register adds an annotator. Registering two annotators with the same slug
// is a configuration error: evidence is keyed by slug, and a collision would
// silently merge evidence from different sources.
func (r *Registry) Register(a Annotator) error {
	slug := a.Slug()
	if slug == "" {
		return types.NewConfigurationError("annotator has an empty slug")
	}
	if _, exists := r.annotators[slug]; exists {
		return types.NewConfigurationError("annotator slug %q is already registered", slug)
	}
	r.annotators[slug] = a
	return nil
}

// Get returns the annotator registered under slug.
func (r *Registry) Get(slug string) (Annotator, bool) {
	a, ok := r.annotators[slug]
	return a, ok
}

// Slugs returns the registered slugs in sorted order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.annotators))
	for slug := range r.annotators {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

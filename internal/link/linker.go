// Package link maps normalized curies to knowledge graph node candidates.
// The linker is the only pipeline stage that talks to the KG during mapping;
// it batches curie lookups into bulk calls and isolates remote failures per
// curie, so one bad lookup never sinks the rest of an entity's evidence.
package link

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// KGClient is the slice of the knowledge graph client the linker uses.
type KGClient interface {
	// Canonicalize resolves curies to canonical node ids in one bulk call.
	// Curies unknown to the KG are absent from the result.
	Canonicalize(ctx context.Context, curies []string) (map[string][]string, error)
}

// Linker retrieves candidate KG nodes for normalized curies.
type Linker struct {
	client KGClient
	log    *slog.Logger
}

// New creates a linker over the KG client.
func New(client KGClient, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{client: client, log: logger}
}

// Link retrieves candidates for one entity's curies, partitioned by origin.
// A curie the KG does not know yields no candidates; a curie whose lookup
// fails at the transport level is recorded in Failed and the remaining curies
// still resolve.
func (l *Linker) Link(ctx context.Context, ids types.NormalizedIDSet) (types.CandidateSet, error) {
	sets, err := l.LinkBatch(ctx, []types.NormalizedIDSet{ids})
	if err != nil {
		return types.CandidateSet{}, err
	}
	return sets[0], nil
}

// LinkBatch retrieves candidates for a batch of entities with one bulk KG
// call covering every distinct curie in the batch, then demultiplexes the
// node sets back per entity.
func (l *Linker) LinkBatch(ctx context.Context, idSets []types.NormalizedIDSet) ([]types.CandidateSet, error) {
	distinct := collectDistinct(idSets)
	nodes, failed, err := l.lookup(ctx, distinct)
	if err != nil {
		return nil, err
	}

	results := make([]types.CandidateSet, len(idSets))
	for i, ids := range idSets {
		results[i] = buildCandidateSet(ids, nodes, failed)
	}
	return results, nil
}

// lookup canonicalizes curies, falling back to per-curie calls when the bulk
// call fails so individual failures can be isolated. The per-curie failure
// reasons are returned keyed by curie.
func (l *Linker) lookup(ctx context.Context, curies []string) (map[string][]string, map[string]string, error) {
	if len(curies) == 0 {
		return map[string][]string{}, nil, nil
	}

	nodes, err := l.client.Canonicalize(ctx, curies)
	if err == nil {
		return nodes, nil, nil
	}
	if ctx.Err() != nil {
		return nil, nil, err
	}
	l.log.Warn("bulk canonicalize failed, retrying per curie",
		"curies", len(curies), "error", err)

	nodes = make(map[string][]string)
	failed := make(map[string]string)
	for _, curie := range curies {
		single, err := l.client.Canonicalize(ctx, []string{curie})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}
			failed[curie] = err.Error()
			continue
		}
		for k, v := range single {
			nodes[k] = v
		}
	}
	return nodes, failed, nil
}

func buildCandidateSet(ids types.NormalizedIDSet, nodes map[string][]string, failed map[string]string) types.CandidateSet {
	set := types.CandidateSet{
		Nodes:         make(types.NodeSupport),
		ProvidedNodes: make(types.NodeSupport),
		AssignedNodes: make(map[string]types.NodeSupport),
	}

	for _, curie := range ids.Provided {
		addSupport(set.Nodes, curie.String(), nodes)
		addSupport(set.ProvidedNodes, curie.String(), nodes)
	}
	for slug, curies := range ids.Assigned {
		support := make(types.NodeSupport)
		for _, curie := range curies {
			addSupport(set.Nodes, curie.String(), nodes)
			addSupport(support, curie.String(), nodes)
		}
		if len(support) > 0 {
			set.AssignedNodes[slug] = support
		}
	}

	if len(failed) > 0 {
		for _, curie := range ids.All() {
			if reason, ok := failed[curie]; ok {
				set.Failed = append(set.Failed, types.FailedLookup{CURIE: curie, Reason: reason})
			}
		}
		sort.Slice(set.Failed, func(i, j int) bool { return set.Failed[i].CURIE < set.Failed[j].CURIE })
	}
	return set
}

// addSupport records curie as a supporter of each node it canonicalizes to,
// keeping each support list free of duplicates.
func addSupport(support types.NodeSupport, curie string, nodes map[string][]string) {
	for _, node := range nodes[curie] {
		if !contains(support[node], curie) {
			support[node] = append(support[node], curie)
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func collectDistinct(idSets []types.NormalizedIDSet) []string {
	seen := make(map[string]bool)
	var curies []string
	for _, ids := range idSets {
		for _, curie := range ids.All() {
			if !seen[curie] {
				seen[curie] = true
				curies = append(curies, curie)
			}
		}
	}
	sort.Strings(curies)
	return curies
}

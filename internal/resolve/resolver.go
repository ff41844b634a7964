// Package resolve collapses an entity's candidate nodes into at most one
// canonical node by vote counting. Each distinct supporting curie is one
// vote; the node with strictly the most votes wins. Ties are reported as
// ambiguous rather than broken by any secondary rule, and losing candidates
// stay in the result so a resolution can always be audited.
package resolve

import (
	"sort"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// Resolver turns candidate sets into resolution results. It is stateless and
// pure; resolving the same candidate set twice yields identical results.
type Resolver struct{}

// New creates a resolver.
func New() *Resolver { return &Resolver{} }

// Resolve produces the terminal resolution for one entity: the overall
// outcome over all evidence plus per-origin sub-resolutions over provided and
// assigned support alone.
func (r *Resolver) Resolve(candidates types.CandidateSet) types.ResolutionResult {
	return types.ResolutionResult{
		Overall:  resolveSupport(candidates.Nodes),
		Provided: resolveSupport(candidates.ProvidedNodes),
		Assigned: resolveSupport(candidates.AssignedCombined()),
	}
}

// resolveSupport vote-counts one support map. Zero candidates is unresolved;
// a strict maximum is resolved; anything else is ambiguous with the tied
// nodes reported in sorted order.
func resolveSupport(support types.NodeSupport) types.Resolution {
	if len(support) == 0 {
		return types.Resolution{Status: types.StatusUnresolved}
	}

	candidates := make([]types.NodeVotes, 0, len(support))
	for node, curies := range support {
		distinct := distinctStrings(curies)
		candidates = append(candidates, types.NodeVotes{
			NodeID: node,
			Votes:  len(distinct),
			CURIEs: distinct,
		})
	}
	// Strongest first; equal votes ordered by node id for stable output.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Votes != candidates[j].Votes {
			return candidates[i].Votes > candidates[j].Votes
		}
		return candidates[i].NodeID < candidates[j].NodeID
	})

	top := candidates[0].Votes
	var tied []string
	for _, c := range candidates {
		if c.Votes == top {
			tied = append(tied, c.NodeID)
		}
	}

	if len(tied) > 1 {
		sort.Strings(tied)
		return types.Resolution{
			Status:     types.StatusAmbiguous,
			Tied:       tied,
			Candidates: candidates,
		}
	}
	return types.Resolution{
		Status:     types.StatusResolved,
		NodeID:     candidates[0].NodeID,
		Votes:      top,
		Candidates: candidates,
	}
}

func distinctStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

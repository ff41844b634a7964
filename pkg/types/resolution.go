package types

// ResolutionStatus is the terminal outcome of resolving one entity's
// candidate set.
type ResolutionStatus string

const (
	// StatusResolved means one node had strictly more distinct supporting
	// curies than every other candidate.
	StatusResolved ResolutionStatus = "resolved"

	// StatusAmbiguous means two or more nodes tied for the highest vote
	// count. No canonical node is chosen; the tied set is reported instead.
	StatusAmbiguous ResolutionStatus = "ambiguous"

	// StatusUnresolved means no candidate nodes existed for the entity.
	StatusUnresolved ResolutionStatus = "unresolved"
)

// NodeVotes records one candidate node's vote count and the distinct curies
// that contributed. Losing candidates are kept in the result so resolution
// stays inspectable after the fact.
type NodeVotes struct {
	NodeID string   `json:"node_id"`
	Votes  int      `json:"votes"`
	CURIEs []string `json:"curies"`
}

// Resolution is the outcome of vote-counting over one support map.
type Resolution struct {
	// Status is resolved, ambiguous, or unresolved.
	Status ResolutionStatus `json:"status"`

	// NodeID is the chosen canonical node. Set only when Status is resolved.
	NodeID string `json:"node_id,omitempty"`

	// Votes is the winning vote count. Set only when Status is resolved.
	Votes int `json:"votes,omitempty"`

	// Tied lists the node ids tied at the highest vote count when Status is
	// ambiguous, sorted for stable output.
	Tied []string `json:"tied,omitempty"`

	// Candidates lists every candidate with its votes, strongest first.
	Candidates []NodeVotes `json:"candidates,omitempty"`
}

// ResolutionResult is the Resolver's terminal output for one entity. Besides
// the overall resolution it carries per-origin sub-resolutions, which is what
// makes provided-vs-assigned agreement measurable at the dataset level.
type ResolutionResult struct {
	// Overall resolves over all candidates regardless of origin.
	Overall Resolution `json:"overall"`

	// Provided resolves over candidates supported by provided curies only.
	Provided Resolution `json:"provided"`

	// Assigned resolves over candidates supported by assigned curies only,
	// with all annotators' support combined.
	Assigned Resolution `json:"assigned"`
}

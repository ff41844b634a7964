package types

// NodeSupport maps a KG node id to the distinct curies supporting it. One
// curie may support multiple nodes (the KG can declare several nodes
// equivalent to one curie) and one node is usually supported by several
// curies; neither multiplicity is collapsed here.
type NodeSupport map[string][]string

// FailedLookup records one curie whose KG lookup failed at the transport
// level. A failed lookup is surfaced in provenance rather than being treated
// as an empty result, and it never blocks the entity's other curies.
type FailedLookup struct {
	CURIE  string `json:"curie"`
	Reason string `json:"reason"`
}

// CandidateSet is the Linker's output for one entity: candidate KG nodes with
// their supporting curies, partitioned by origin for provenance.
type CandidateSet struct {
	// Nodes holds all candidate nodes with supporting curies from every
	// origin combined.
	Nodes NodeSupport `json:"nodes,omitempty"`

	// ProvidedNodes holds candidates supported by provided curies only.
	ProvidedNodes NodeSupport `json:"provided_nodes,omitempty"`

	// AssignedNodes holds candidates supported by assigned curies, keyed by
	// annotator slug.
	AssignedNodes map[string]NodeSupport `json:"assigned_nodes,omitempty"`

	// Failed lists curies whose lookup failed.
	Failed []FailedLookup `json:"failed,omitempty"`
}

// HasCandidates reports whether any KG node candidate was found.
func (c CandidateSet) HasCandidates() bool { return len(c.Nodes) > 0 }

// AssignedCombined merges the per-annotator assigned candidates into one
// support map, concatenating curie lists per node.
func (c CandidateSet) AssignedCombined() NodeSupport {
	combined := make(NodeSupport)
	for _, support := range c.AssignedNodes {
		for node, curies := range support {
			combined[node] = append(combined[node], curies...)
		}
	}
	return combined
}

package types

// MappingResult is the full outcome of running one entity through the
// four-stage pipeline. Every stage's derived data is retained alongside the
// original entity, enabling provenance replay from raw input to chosen node.
type MappingResult struct {
	// Entity is the input entity, unchanged.
	Entity Entity `json:"entity"`

	// Assigned is the raw annotation evidence accumulated in stage 1.
	Assigned AssignedIDs `json:"assigned,omitempty"`

	// AnnotationFailures records annotators skipped under the skip-and-
	// continue failure policy.
	AnnotationFailures []AnnotationFailure `json:"annotation_failures,omitempty"`

	// IDs is the normalized curie set produced in stage 2.
	IDs NormalizedIDSet `json:"ids"`

	// Candidates is the KG candidate set produced in stage 3.
	Candidates CandidateSet `json:"candidates"`

	// Resolution is the terminal stage 4 outcome.
	Resolution ResolutionResult `json:"resolution"`
}

// ChosenNode returns the canonical KG node id, or "" when the entity did not
// resolve to a single node.
func (r *MappingResult) ChosenNode() string {
	return r.Resolution.Overall.NodeID
}

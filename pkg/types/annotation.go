package types

// RawEvidence is the evidence mapping one annotator returns for one entity:
// raw API field name -> raw value(s), exactly as the external source names
// them. Annotators must not rename fields, strip prefixes, or otherwise clean
// values; all identifier interpretation belongs to the Normalizer.
type RawEvidence map[string][]string

// Clone returns a deep copy of the evidence mapping.
func (r RawEvidence) Clone() RawEvidence {
	if r == nil {
		return nil
	}
	out := make(RawEvidence, len(r))
	for field, values := range r {
		cp := make([]string, len(values))
		copy(cp, values)
		out[field] = cp
	}
	return out
}

// AssignedIDs accumulates raw annotation evidence per annotator:
// annotator slug -> raw field name -> raw values. Each annotator exclusively
// owns the sub-mapping keyed by its own slug; the annotation engine guarantees
// no two annotators share a slug, so merging never overwrites evidence.
type AssignedIDs map[string]RawEvidence

// Merge adds evidence under the given annotator slug, combining field values
// when the slug already holds evidence from an earlier call.
func (a AssignedIDs) Merge(slug string, evidence RawEvidence) {
	if len(evidence) == 0 {
		return
	}
	existing, ok := a[slug]
	if !ok {
		a[slug] = evidence.Clone()
		return
	}
	for field, values := range evidence {
		existing[field] = append(existing[field], values...)
	}
}

// AnnotationFailure records one annotator that failed for an entity when the
// engine's failure policy is to skip and continue. It is provenance, not an
// error: the remaining evidence still flows through the pipeline.
type AnnotationFailure struct {
	// Slug identifies the annotator that failed.
	Slug string `json:"slug"`

	// Reason is the failure message from the underlying remote call.
	Reason string `json:"reason"`
}

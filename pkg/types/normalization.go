package types

// Drop reasons recorded by the Normalizer when a raw identifier value does not
// survive normalization.
const (
	// DropInvalidFormat means the cleaned value failed the vocabulary's
	// validation pattern.
	DropInvalidFormat = "invalid format"

	// DropUnrecognizedVocab means no registered vocabulary matched the raw
	// field name.
	DropUnrecognizedVocab = "unrecognized vocabulary"
)

// DroppedID records one raw identifier value the Normalizer dropped, with the
// field it came from and the reason. Drops are provenance, never errors.
type DroppedID struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// NormalizedIDSet holds the curies derived for one entity, partitioned by
// origin for provenance: curies normalized from the caller's provided ID
// fields versus curies normalized from each annotator's assigned IDs.
// Identical curies arriving via different origins are deliberately kept in
// both partitions until resolution.
type NormalizedIDSet struct {
	// Provided holds curies normalized from the user-provided ID fields.
	Provided []CURIE `json:"provided"`

	// Assigned holds curies normalized from annotation evidence, keyed by
	// annotator slug.
	Assigned map[string][]CURIE `json:"assigned,omitempty"`

	// DroppedProvided records provided values that failed validation.
	DroppedProvided []DroppedID `json:"dropped_provided,omitempty"`

	// DroppedAssigned records assigned values that failed validation, keyed
	// by annotator slug.
	DroppedAssigned map[string][]DroppedID `json:"dropped_assigned,omitempty"`

	// UnrecognizedProvided lists provided field names that matched no
	// registered vocabulary.
	UnrecognizedProvided []string `json:"unrecognized_provided,omitempty"`

	// UnrecognizedAssigned lists assigned field names that matched no
	// registered vocabulary.
	UnrecognizedAssigned []string `json:"unrecognized_assigned,omitempty"`
}

// All returns the distinct union of provided and assigned curie strings.
func (s NormalizedIDSet) All() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(curies []CURIE) {
		for _, c := range curies {
			key := c.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	add(s.Provided)
	for _, curies := range s.Assigned {
		add(curies)
	}
	return out
}

// HasProvided reports whether any provided curie survived normalization.
func (s NormalizedIDSet) HasProvided() bool { return len(s.Provided) > 0 }

// HasAssigned reports whether any assigned curie survived normalization.
func (s NormalizedIDSet) HasAssigned() bool {
	for _, curies := range s.Assigned {
		if len(curies) > 0 {
			return true
		}
	}
	return false
}

// DropCount returns the total number of dropped values across origins.
func (s NormalizedIDSet) DropCount() int {
	n := len(s.DroppedProvided)
	for _, drops := range s.DroppedAssigned {
		n += len(drops)
	}
	return n
}

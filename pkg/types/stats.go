package types

import "fmt"

// RowFailure records one dataset row that failed mapping outright (for
// example, annotation aborted under the abort policy). Row failures never
// abort the dataset pass; they are reported alongside successes.
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Ratio is a safe-divide result: Value is nil when the denominator was zero,
// meaning the metric is not applicable rather than zero.
type Ratio struct {
	Value       *float64 `json:"value"`
	Explanation string   `json:"explanation"`
}

// Performance summarizes mapping quality ratios for a dataset pass.
type Performance struct {
	// Coverage is mapped entities over total entities.
	Coverage Ratio `json:"coverage"`

	// AssignedCoverage is entities mapped via assigned IDs over total.
	AssignedCoverage Ratio `json:"assigned_coverage"`

	// AssignedPrecision is, over entities where both provided and assigned
	// evidence mapped, the share where the assigned candidates agreed with
	// the provided ones.
	AssignedPrecision Ratio `json:"assigned_precision"`

	// AssignedRecall is assigned/provided agreement over entities where
	// provided evidence mapped.
	AssignedRecall Ratio `json:"assigned_recall"`
}

// SummaryStats aggregates the outcome of one dataset mapping pass. It is
// owned by the dataset-mapping driver, not by the pipeline stages.
type SummaryStats struct {
	// RunID uniquely identifies this mapping pass.
	RunID string `json:"run_id"`

	// Dataset is the input path or label.
	Dataset string `json:"dataset"`

	// EntityType is the declared type of the dataset's entities.
	EntityType string `json:"entity_type"`

	TotalItems int `json:"total_items"`

	// Mapping coverage by origin.
	MappedToKG       int `json:"mapped_to_kg"`
	MappedProvided   int `json:"mapped_to_kg_provided"`
	MappedAssigned   int `json:"mapped_to_kg_assigned"`
	MappedBoth       int `json:"mapped_to_kg_provided_and_assigned"`
	AssignedAgreeing int `json:"assigned_mappings_correct_per_provided"`

	// Mapping multiplicity.
	OneToOneMappings  int `json:"one_to_one_mappings"`
	OneToManyMappings int `json:"one_to_many_mappings"`
	ManyToOneMappings int `json:"many_to_one_mappings"`
	MultiMappings     int `json:"multi_mappings"`

	// Identifier validity by origin.
	HasValidIDs         int `json:"has_valid_ids"`
	HasValidProvided    int `json:"has_valid_ids_provided"`
	HasValidAssigned    int `json:"has_valid_ids_assigned"`
	HasOnlyProvidedIDs  int `json:"has_only_provided_ids"`
	HasOnlyAssignedIDs  int `json:"has_only_assigned_ids"`
	HasBothOriginIDs    int `json:"has_both_provided_and_assigned_ids"`
	HasInvalidIDs       int `json:"has_invalid_ids"`
	HasNoIDs            int `json:"has_no_ids"`
	InvalidAndUnmapped  int `json:"has_invalid_ids_and_not_mapped_to_kg"`

	// Resolution outcomes.
	Resolved   int `json:"resolved"`
	Ambiguous  int `json:"ambiguous"`
	Unresolved int `json:"unresolved"`

	// Failures holds per-row failures accumulated during the pass.
	Failures []RowFailure `json:"failures,omitempty"`

	Performance Performance `json:"performance"`
}

// SafeDivide divides two counts, returning a Ratio whose value is nil when
// the denominator is zero (the metric is not applicable, not zero).
func SafeDivide(numerator, denominator int) Ratio {
	r := Ratio{Explanation: fmt.Sprintf("%d / %d", numerator, denominator)}
	if denominator == 0 {
		return r
	}
	v := float64(numerator) / float64(denominator)
	r.Value = &v
	return r
}

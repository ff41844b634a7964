package types

import "strings"

// CURIE is a compact URI identifying an entity in one canonical vocabulary,
// in Biolink-standard form: prefix, colon, local ID (e.g. "CHEBI:17234").
// CURIEs are produced only by the Normalizer; the prefix is always one of the
// registered vocabularies and the local ID has passed that vocabulary's
// validation pattern.
type CURIE struct {
	// Prefix is the canonical vocabulary prefix with its standard
	// capitalization, e.g. "KEGG.COMPOUND", "PUBCHEM.COMPOUND".
	Prefix string `json:"prefix"`

	// LocalID is the cleaned, validated local identifier.
	LocalID string `json:"local_id"`

	// IRI is the expanded web identifier for this CURIE, when the vocabulary
	// has a known IRI root. Informational only.
	IRI string `json:"iri,omitempty"`
}

// String returns the curie in prefix:local_id form.
func (c CURIE) String() string {
	return c.Prefix + ":" + c.LocalID
}

// ParseCURIE splits a prefix:local_id string into its parts. The second
// return value is false when the string has no colon (URLs do not count as
// curies and are rejected).
func ParseCURIE(s string) (prefix, localID string, ok bool) {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return "", "", false
	}
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// CURIEStrings renders a list of curies to their string forms.
func CURIEStrings(curies []CURIE) []string {
	out := make([]string, len(curies))
	for i, c := range curies {
		out[i] = c.String()
	}
	return out
}

// Package normalize turns raw identifier fields into validated canonical
// curies. It owns the vocabulary catalog: field-name recognition, value
// cleaning, and format validation all happen here and nowhere else in the
// pipeline. The stage is pure text transformation with no network access.
package normalize

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// fieldStopwords are tokens stripped from a field name before vocabulary
// lookup, so "pubchem_cid" and "pubchem" resolve identically.
var fieldStopwords = map[string]bool{
	"id": true, "ids": true, "identifier": true, "identifiers": true,
	"code": true, "codes": true, "cid": true, "list": true, "no": true,
	"number": true, "accession": true,
}

// Options configures a Normalizer.
type Options struct {
	// Delimiters are the characters that split a single raw value into
	// multiple values (default: "," and ";").
	Delimiters string

	// Overrides patch or extend the built-in vocabulary catalog, keyed by
	// vocabulary name.
	Overrides map[string]Vocabulary
}

// Normalizer converts raw identifier fields into curies using an immutable
// vocabulary catalog fixed at construction. It is safe for concurrent use.
type Normalizer struct {
	vocabs     map[string]Vocabulary
	aliases    map[string]string // alias -> vocabulary name
	byPrefix   map[string]string // lowercase canonical prefix -> vocabulary name
	delimiters string

	mu        sync.Mutex
	fieldMemo map[string][]string // field name -> matching vocabulary names
}

// New builds a Normalizer from the built-in catalog plus any overrides.
func New(opts Options) *Normalizer {
	if opts.Delimiters == "" {
		opts.Delimiters = ",;"
	}

	vocabs := make(map[string]Vocabulary, len(builtinVocabularies)+len(opts.Overrides))
	for name, vocab := range builtinVocabularies {
		vocabs[name] = vocab
	}
	for name, vocab := range opts.Overrides {
		vocabs[strings.ToLower(name)] = vocab
	}

	aliases := make(map[string]string)
	for name, vocab := range vocabs {
		for _, alias := range vocab.Aliases {
			aliases[strings.ToLower(alias)] = name
		}
	}

	// Vocabularies sharing a canonical prefix (metacyc.reaction and its EC
	// sub-form) resolve to the first name in sorted order.
	byPrefix := make(map[string]string, len(vocabs))
	for _, name := range sortedNames(vocabs) {
		prefix := strings.ToLower(vocabs[name].Prefix)
		if _, ok := byPrefix[prefix]; !ok {
			byPrefix[prefix] = name
		}
	}

	return &Normalizer{
		vocabs:     vocabs,
		aliases:    aliases,
		byPrefix:   byPrefix,
		delimiters: opts.Delimiters,
		fieldMemo:  make(map[string][]string),
	}
}

func sortedNames(vocabs map[string]Vocabulary) []string {
	names := make([]string, 0, len(vocabs))
	for name := range vocabs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeEntity converts the entity's identifier fields and the annotation
// evidence into a NormalizedIDSet. providedFields names the entity fields the
// caller marked as identifiers; assigned is the per-annotator raw evidence.
// Identical curies are deduplicated within an origin but kept distinct across
// origins.
func (n *Normalizer) NormalizeEntity(entity types.Entity, providedFields []string, assigned types.AssignedIDs) types.NormalizedIDSet {
	ids := types.NormalizedIDSet{
		Assigned:        make(map[string][]types.CURIE),
		DroppedAssigned: make(map[string][]types.DroppedID),
	}

	for _, field := range providedFields {
		curies, dropped, recognized := n.normalizeField(field, entity.Values(field))
		if !recognized {
			ids.UnrecognizedProvided = append(ids.UnrecognizedProvided, field)
		}
		ids.Provided = append(ids.Provided, curies...)
		ids.DroppedProvided = append(ids.DroppedProvided, dropped...)
	}
	ids.Provided = dedupeCURIEs(ids.Provided)

	for _, slug := range sortedSlugs(assigned) {
		evidence := assigned[slug]
		fields := make([]string, 0, len(evidence))
		for field := range evidence {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var curies []types.CURIE
		for _, field := range fields {
			fieldCuries, dropped, recognized := n.normalizeField(field, evidence[field])
			if !recognized {
				ids.UnrecognizedAssigned = append(ids.UnrecognizedAssigned, slug+"."+field)
			}
			curies = append(curies, fieldCuries...)
			ids.DroppedAssigned[slug] = append(ids.DroppedAssigned[slug], dropped...)
		}
		if curies = dedupeCURIEs(curies); len(curies) > 0 {
			ids.Assigned[slug] = curies
		}
	}

	return ids
}

// NormalizeField converts a single raw field into curies, for callers outside
// the entity pipeline (e.g. ad-hoc ID cleanup).
func (n *Normalizer) NormalizeField(field string, values []string) ([]types.CURIE, []types.DroppedID) {
	curies, dropped, _ := n.normalizeField(field, values)
	return dedupeCURIEs(curies), dropped
}

func (n *Normalizer) normalizeField(field string, values []string) ([]types.CURIE, []types.DroppedID, bool) {
	vocabNames := n.vocabsForField(field)

	var curies []types.CURIE
	var dropped []types.DroppedID
	sawValue := false

	for _, raw := range values {
		for _, value := range n.splitValues(raw) {
			value = scrubValue(value)
			if value == "" {
				continue
			}
			sawValue = true

			names := vocabNames
			local := value
			// A value already in curie form carries its own vocabulary;
			// honor it so normalization is idempotent and so evidence
			// fields like a search hit's "id" resolve without a field
			// mapping.
			if prefix, localPart, ok := types.ParseCURIE(value); ok {
				if name, known := n.vocabForPrefix(prefix); known {
					names = []string{name}
					local = localPart
				}
			}
			if len(names) == 0 {
				continue
			}

			curie, ok := n.normalizeValue(names, local)
			if !ok {
				dropped = append(dropped, types.DroppedID{
					Field:  field,
					Value:  raw,
					Reason: types.DropInvalidFormat,
				})
				continue
			}
			curies = append(curies, curie)
		}
	}

	// An unmapped field only counts as unrecognized when it actually held
	// values; empty columns are just absent data.
	recognized := len(vocabNames) > 0 || !sawValue || len(curies) > 0
	return curies, dropped, recognized
}

// normalizeValue tries each candidate vocabulary in order, returning the
// first whose cleaner+validator accepts the value.
func (n *Normalizer) normalizeValue(names []string, value string) (types.CURIE, bool) {
	for _, name := range names {
		vocab := n.vocabs[name]

		local := value
		// Strip this vocabulary's own prefix when the value arrived in
		// curie form, e.g. "CHEBI:17126" in a chebi column.
		if rest, ok := cutPrefixFold(local, vocab.Prefix+":"); ok {
			local = rest
		}
		if vocab.Clean != nil {
			local = vocab.Clean(local)
		}
		if local == "" || !vocab.Validate(local) {
			continue
		}

		curie := types.CURIE{Prefix: vocab.Prefix, LocalID: local}
		if vocab.IRI != "" {
			curie.IRI = vocab.IRI + local
		}
		return curie, true
	}
	return types.CURIE{}, false
}

// vocabsForField resolves a raw field name to its candidate vocabulary
// names, most specific first. Results are memoized per field name.
func (n *Normalizer) vocabsForField(field string) []string {
	key := strings.ToLower(strings.TrimSpace(field))
	if key == "" {
		return nil
	}

	if _, ok := n.vocabs[key]; ok {
		return []string{key}
	}
	if name, ok := n.aliases[key]; ok {
		return []string{name}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if names, ok := n.fieldMemo[key]; ok {
		return names
	}

	names := n.matchScrubbedField(key)
	n.fieldMemo[key] = names
	return names
}

// matchScrubbedField strips filler tokens from a field name ("pubchem_cid"
// -> "pubchem") and retries the lookup, falling back to dot-insensitive
// matching against the catalog ("kegg_compound" -> "kegg.compound").
func (n *Normalizer) matchScrubbedField(key string) []string {
	tokens := splitFieldTokens(key)
	kept := tokens[:0]
	for _, token := range tokens {
		if !fieldStopwords[token] {
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	scrubbed := strings.Join(kept, "")

	if _, ok := n.vocabs[scrubbed]; ok {
		return []string{scrubbed}
	}
	if name, ok := n.aliases[scrubbed]; ok {
		return []string{name}
	}

	var matches []string
	for name := range n.vocabs {
		root, _, _ := strings.Cut(name, ".")
		if root == scrubbed || strings.ReplaceAll(name, ".", "") == scrubbed {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

// vocabForPrefix maps a canonical curie prefix back to its vocabulary name.
func (n *Normalizer) vocabForPrefix(prefix string) (string, bool) {
	name, ok := n.byPrefix[strings.ToLower(prefix)]
	return name, ok
}

// splitValues breaks one raw cell into individual values: JSON-style list
// literals are decoded, otherwise the cell is split on the configured
// delimiters.
func (n *Normalizer) splitValues(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
			return list
		}
		// Not valid JSON; fall through and split the bracket-stripped
		// body on delimiters.
		trimmed = strings.Trim(trimmed, "[]")
	}

	if !strings.ContainsAny(trimmed, n.delimiters) {
		return []string{trimmed}
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return strings.ContainsRune(n.delimiters, r)
	})
	for i, part := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(part), `"'`)
	}
	return parts
}

// scrubValue trims a raw value, collapses placeholder dashes to empty, and
// strips the trailing ".0" that numeric IDs pick up from spreadsheet floats.
func scrubValue(value string) string {
	value = strings.TrimSpace(value)

	allDashes := value != "" && strings.IndexFunc(value, func(r rune) bool {
		switch r {
		case '-', '‐', '‒', '–', '—', '−':
			return false
		}
		return true
	}) < 0
	if allDashes {
		return ""
	}

	if head, ok := strings.CutSuffix(value, ".0"); ok && head != "" && isNumericID(head) {
		return head
	}
	return value
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func dedupeCURIEs(curies []types.CURIE) []types.CURIE {
	if len(curies) < 2 {
		return curies
	}
	seen := make(map[string]bool, len(curies))
	out := curies[:0]
	for _, curie := range curies {
		key := curie.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, curie)
		}
	}
	return out
}

func sortedSlugs(assigned types.AssignedIDs) []string {
	slugs := make([]string, 0, len(assigned))
	for slug := range assigned {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// splitFieldTokens splits a field name on non-alphanumeric runes.
func splitFieldTokens(field string) []string {
	return strings.FieldsFunc(field, func(r rune) bool {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		return !isAlnum
	})
}

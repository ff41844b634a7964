package types

import "strings"

// Entity represents one biological entity to be mapped to the knowledge graph.
// It is a loose mapping from field name to raw value, as supplied by the caller
// or read from one dataset row, tagged with a declared entity type.
//
// The provided fields of an Entity are never mutated by any pipeline stage;
// stages only accumulate derived data (assigned IDs, CURIEs, candidates,
// resolution) alongside it, which is what makes full provenance replay possible.
type Entity struct {
	// Type is the declared entity type, e.g. "metabolite", "protein", "lipid".
	Type string `json:"type"`

	// Fields maps field names to raw values. Values are strings, string
	// slices, or nil for empty cells.
	Fields map[string]any `json:"fields"`
}

// NewEntity creates an entity of the given type with the given raw fields.
func NewEntity(entityType string, fields map[string]any) Entity {
	if fields == nil {
		fields = make(map[string]any)
	}
	return Entity{Type: entityType, Fields: fields}
}

// Text returns the string value of a field, trimmed of surrounding whitespace.
// It returns "" when the field is missing, nil, or not a plain string.
func (e Entity) Text(field string) string {
	v, ok := e.Fields[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Values returns the raw value of a field as a list of strings. A string
// value becomes a one-element list, a []string is returned as-is, and a
// missing or nil field yields an empty list.
func (e Entity) Values(field string) []string {
	v, ok := e.Fields[field]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// HasAnyValue reports whether any of the given fields holds a non-empty value.
func (e Entity) HasAnyValue(fields []string) bool {
	for _, f := range fields {
		if len(e.Values(f)) > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the entity so pipeline stages can never alias
// the caller's field map.
func (e Entity) Clone() Entity {
	fields := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			fields[k] = cp
			continue
		}
		fields[k] = v
	}
	return Entity{Type: e.Type, Fields: fields}
}

package normalize

import (
	"strings"
)

// CleanerFunc rewrites a raw local ID into the form its validator expects.
// Cleaners must be idempotent: cleaning an already-clean value is a no-op.
type CleanerFunc func(localID string) string

// stripPrefix builds a cleaner that removes a leading vocabulary marker like
// "LM" or "SLM:" that sources embed inside the local ID itself.
func stripPrefix(prefixes ...string) CleanerFunc {
	return func(localID string) string {
		for _, p := range prefixes {
			if rest, ok := strings.CutPrefix(localID, p); ok {
				return rest
			}
		}
		return localID
	}
}

// cleanHMDBID repairs the two common HMDB malformations: a doubled prefix
// ("HMDBHMDB0000001") and the legacy 5-digit form ("HMDB00001"), which is
// zero-padded to the current 7-digit width.
func cleanHMDBID(localID string) string {
	for strings.HasPrefix(localID, "HMDBHMDB") {
		localID = strings.TrimPrefix(localID, "HMDB")
	}
	digits, ok := strings.CutPrefix(localID, "HMDB")
	if !ok {
		return localID
	}
	if len(digits) == 5 && isNumericID(digits) {
		digits = "00" + digits
	}
	return "HMDB" + digits
}

// cleanWikiPathwaysID drops a trailing revision qualifier, e.g.
// "WP1234_r123456" becomes "WP1234".
func cleanWikiPathwaysID(localID string) string {
	if i := strings.Index(localID, "_r"); i >= 0 {
		return localID[:i]
	}
	return localID
}

// cleanUSZipcodeID restores leading zeros lost when ZIP codes pass through
// numeric columns ("1234" means "01234").
func cleanUSZipcodeID(localID string) string {
	if len(localID) < 5 && isNumericID(localID) {
		return strings.Repeat("0", 5-len(localID)) + localID
	}
	return localID
}

// cleanRefmetID zero-pads numeric RefMet IDs to their canonical 7-digit
// width after the "RM" marker is stripped.
func cleanRefmetID(localID string) string {
	localID = stripPrefix("RM")(localID)
	if len(localID) < 7 && isNumericID(localID) {
		return strings.Repeat("0", 7-len(localID)) + localID
	}
	return localID
}

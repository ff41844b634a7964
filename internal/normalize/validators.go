package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// ValidatorFunc reports whether a cleaned local ID is well-formed for a
// vocabulary.
type ValidatorFunc func(localID string) bool

// matching builds a validator from a full-match regular expression.
func matching(pattern string) ValidatorFunc {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

// Shared shapes reused by many vocabularies.
var (
	isNumericID    = matching(`^[0-9]+$`)
	isSevenDigitID = matching(`^\d{7}$`)
)

// isPositiveIntID allows positive integers only (rejects "0" and leading
// signs), used for ChEBI, PubChem CIDs, and NCBI Taxonomy.
func isPositiveIntID(localID string) bool {
	n, err := strconv.Atoi(localID)
	return err == nil && n > 0 && !strings.ContainsAny(localID, "+-")
}

// Chemical and metabolite vocabularies.
var (
	isCASID            = matching(`^\d{2,7}-\d{2}-\d$`)
	isChemblID         = matching(`^CHEMBL\d+$`)
	isDrugbankID       = matching(`^DB\d{5}$`)
	isHMDBID           = matching(`^HMDB(\d{5}|\d{7})$`)
	isInchikeyID       = matching(`^([A-Z]{14}|[A-Z]{12})-[A-Z]{10}-[A-Z]$`)
	isKeggCompoundID   = matching(`^C\d{5}$`)
	isKeggDrugID       = matching(`^D\d{5}$`)
	isKeggGlycanID     = matching(`^G\d{5}$`)
	isKeggReactionID   = matching(`^R\d{5}$`)
	isKeggGenericID    = matching(`^[CDGR]\d{5}$`)
	isLipidbankID      = matching(`^[A-Z]{3}\d{4}$`)
	isLipidmapsID      = matching(`^[A-Z]{2}[A-Z0-9]+$`)
	isPlantfaID        = matching(`^\d{5}$`)
	isRefmetID         = matching(`^\d{7}$`)
	isSwissLipidsID    = matching(`^\d+$`)
	isUNIIID           = matching(`^[A-Z0-9]{10}$`)
	isGtopdbID         = matching(`^\d+$`)
)

// isSMILESString is a simple, permissive SMILES check: a valid character set
// and at least one letter (a SMILES string must represent atoms).
func isSMILESString(localID string) bool {
	if !smilesChars.MatchString(localID) {
		return false
	}
	return strings.IndexFunc(localID, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

var smilesChars = regexp.MustCompile(`^[a-zA-Z0-9\[\]\(\){}=#%+\\/@.\-*:]+$`)

// Gene, protein, and sequence vocabularies.
var (
	isEnsemblGeneID     = matching(`^ENSG\d{11}$`)
	isEnsemblGenomesID  = matching(`^[A-Za-z0-9._-]+$`)
	isFlybaseID         = matching(`^FBgn\d{7}$`)
	isMirbaseID         = matching(`^(MI|MIMAT)\d{7}$`)
	isMirdbID           = matching(`^[a-z]{3}-(miR-)?[-a-z0-9]+$`)
	isNCBIGeneID        = matching(`^[0-9]+$`)
	isPfamID            = matching(`^(PF|CL)\d+$`)
	isPombaseID         = matching(`^SP[A-Z0-9]+\.[A-Z0-9]+c?$`)
	isPRID              = matching(`^(\d{9}|[A-Z0-9-]+)$`)
	isSGDID             = matching(`^S\d{9}$`)
	isWormbaseGeneID    = matching(`^WBGene\d{8}$`)
	isZFINID            = matching(`^ZDB-[A-Z-]+-\d{6,8}-\d+$`)
	isDictybaseGeneID   = matching(`^DDB_G\d+$`)
	isComplexportalID   = matching(`^CPX-\d+$`)
	isDbSNPID           = matching(`^rs[0-9]+(\.\d+)?$`)
	isPharmvarID        = matching(`^[A-Z0-9]+\*\d+(\.\d+)?$`)
	isCytobandID        = matching(`^(\d{1,2}|[XYxy])[pq]\d+(\.\d+)?$`)
)

// isUniprotID allows regular protein IDs (6 or 10 chars, with optional
// isoform suffix) or the special PRO feature IDs. The base ID must contain
// both a letter and a digit.
func isUniprotID(localID string) bool {
	if uniprotFeature.MatchString(localID) {
		return true
	}
	if !uniprotProtein.MatchString(localID) {
		return false
	}
	base := strings.SplitN(localID, "-", 2)[0]
	return strings.ContainsAny(base, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(base, "0123456789")
}

var (
	uniprotProtein = regexp.MustCompile(`^([A-Z0-9]{6}|[A-Z0-9]{10})(-\d+)?$`)
	uniprotFeature = regexp.MustCompile(`^([A-Z0-9]{6}|[A-Z0-9]{10})-PRO_\d+$`)
)

// isECID allows EC number formats like 3.1.7.2 or 1.14.13.M81: one to four
// dot-separated parts, each a number, a letter group with optional digits, or
// a dash for unspecified sub-subclasses.
func isECID(localID string) bool {
	parts := strings.Split(localID, ".")
	if len(parts) < 1 || len(parts) > 4 {
		return false
	}
	for _, part := range parts {
		if !ecPart.MatchString(part) {
			return false
		}
	}
	return true
}

var ecPart = regexp.MustCompile(`^([0-9]+|[A-Z]+[0-9]*|-)$`)

// Disease, phenotype, and clinical vocabularies.
var (
	isChvID       = matching(`^\d{10}$`)
	isDOIDID      = matching(`^[0-9]+$`)
	isEFOID       = matching(`^[0-9]{7}$`)
	isHCPCSID     = matching(`^[A-Z0-9]\d{3,4}[A-Z0-9]?$`)
	isICD10ID     = matching(`^[A-Z][A-Z0-9]{2}(\.[A-Z0-9]+)?$`)
	isICD10PCSID  = matching(`^[A-Z0-9]{3,7}$`)
	isLOINCID     = matching(`^(LP)?\d+-\d$`)
	isMeddraID    = matching(`^\d+$`)
	isMeshID      = matching(`^[DCM]\d+$`)
	isMONDOID     = matching(`^[0-9]{7}$`)
	isNCITID      = matching(`^C\d+$`)
	isNDFRTID     = matching(`^N\d{10}$`)
	isOMIMPSID    = matching(`^PS\d{6}$`)
	isPDQID       = matching(`^CDR\d+$`)
	isATCID       = matching(`^[A-Z](\d{2}([A-Z]{1,2}(\d{2})?)?)?$`)
	isVANDFID     = matching(`^\d+$`)
)

// isSnomedCTID allows numeric strings of any length.
func isSnomedCTID(localID string) bool {
	return localID != "" && isNumericID(localID)
}

// isICD9ID allows single codes (XXX.XX) or ranges (317-319.99).
func isICD9ID(localID string) bool {
	if strings.Contains(localID, "-") {
		parts := strings.Split(localID, "-")
		if len(parts) != 2 {
			return false
		}
		return icd9Code.MatchString(parts[0]) && icd9Code.MatchString(parts[1])
	}
	return icd9Code.MatchString(localID)
}

var icd9Code = regexp.MustCompile(`^\d{3}(\.\d{1,2})?$`)

// UMLS identifiers: CUIs (C + 7 digits) or MTHU IDs (MTHU + 6 digits).
var (
	isUMLSCUI    = matching(`^C\d{7}$`)
	isUMLSMTHUID = matching(`^MTHU\d{6}$`)
)

func isUMLSID(localID string) bool {
	return isUMLSCUI(localID) || isUMLSMTHUID(localID)
}

// isOMIMID allows canonical 6-digit IDs or MTHU-prefixed IDs that appear
// under the OMIM prefix (e.g. OMIM:MTHU067886).
func isOMIMID(localID string) bool {
	return (len(localID) == 6 && isNumericID(localID)) || isUMLSMTHUID(localID)
}

// Ontology vocabularies.
var (
	isBFOID      = matching(`^\d+$`)
	isCLID       = matching(`^[0-9]+$`)
	isCLOID      = matching(`^\d{7}$`)
	isENVOID     = matching(`^\d+$`)
	isFBbtID     = matching(`^\d{8}$`)
	isFoodonID   = matching(`^[0-9]{8}$`)
	isGOID       = matching(`^\d{7}$`)
	isOBAID      = matching(`^(\d{7}|VT\d{7})$`)
	isOBOID      = matching(`^[A-Za-z]+_\d+$`)
	isUberonID   = matching(`^[0-9]+$`)
	isZFAID      = matching(`^\d{7}$`)
	isMIID       = matching(`^\d{4}$`)
	isMODID      = matching(`^\d{5}$`)
)

// Pathway and reaction vocabularies.
var (
	isReactomeID     = matching(`^R-[A-Z]{3}-[0-9]+$`)
	isSMPDBID        = matching(`^SMP\d{7}$`)
	isPathwhizID     = matching(`^PW\d{6}$`)
	isWikipathwaysID = matching(`^WP[0-9]+$`)
	isRheaID         = matching(`^\d+$`)
	isTTDTargetID    = matching(`^T\d{5}$`)
	isMetacycECID    = matching(`^\d+\.\d+\.\d+\.[a-zA-Z0-9]+$`)
)

// isMetacycReactionID allows hyphen-separated uppercase/numeric or
// capitalized alpha parts and requires "RXN" somewhere, e.g. TRANS-RXN0-593
// or RXN0-5258-Yeast.
func isMetacycReactionID(localID string) bool {
	if !metacycChars.MatchString(localID) || !strings.Contains(localID, "RXN") {
		return false
	}
	for _, part := range strings.Split(localID, "-") {
		hasAlpha := strings.IndexFunc(part, isASCIILetter) >= 0
		allAlpha := hasAlpha && strings.IndexFunc(part, func(r rune) bool { return !isASCIILetter(r) }) < 0
		if part == strings.ToUpper(part) || !hasAlpha || allAlpha {
			continue
		}
		return false
	}
	return true
}

// isMetacycPathwayID allows all-uppercase hyphenated identifiers like
// PWY-6352 or DESCRIPTIVE-NAME-PWY.
func isMetacycPathwayID(localID string) bool {
	return metacycPathwayChars.MatchString(localID) && localID == strings.ToUpper(localID)
}

var (
	metacycChars        = regexp.MustCompile(`^[A-Za-z0-9-.+]+$`)
	metacycPathwayChars = regexp.MustCompile(`^[A-Z0-9-+]+$`)
)

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Cell line, organism, and miscellaneous vocabularies.
var (
	isCellosaurusID = matching(`^[A-Z0-9]{4}$`)
	isBVBRCID       = matching(`^\d+\.\d+$`)
	isAraportID     = matching(`^AT[1-5MC]G\d{5}$`)
	isVesiclepediaID = matching(`^\d+$`)
	isNhanesID      = matching(`^\d+$`)
	isAhrqID        = matching(`^[A-Z0-9_]+$`)
	isCdcsviID      = matching(`^[A-Z]+$`)
	isFipsPlaceID   = matching(`^(\d{6}|\d{7}|\d{11}|\d{12})$`)
	isFipsStateID   = matching(`^\d{2}$`)
	isHpsID         = matching(`^[a-zA-Z_]+$`)
)

// isGeonamesID allows a 2-letter country code or a dotted hierarchy like
// US.CA.L.
func isGeonamesID(localID string) bool {
	return geonamesCountry.MatchString(localID) || geonamesDotted.MatchString(localID)
}

var (
	geonamesCountry = regexp.MustCompile(`^[A-Z]{2}$`)
	geonamesDotted  = regexp.MustCompile(`^[A-Z]{2}(\.[A-Z0-9]+)+$`)
)

// isUSZipcodeID allows 5-digit US ZIP codes, plus the national aggregate
// marker "US".
func isUSZipcodeID(localID string) bool {
	return usZipcode.MatchString(localID) || localID == "US"
}

var usZipcode = regexp.MustCompile(`^[0-9]{5}$`)

// isChrID allows Country Health Rankings measure slugs: lowercase letters,
// digits, underscores, slashes, and hyphens with at least one letter.
func isChrID(localID string) bool {
	return chrChars.MatchString(localID) && strings.IndexFunc(localID, isASCIILetter) >= 0
}

var chrChars = regexp.MustCompile(`^[a-z0-9_/-]+$`)

package normalize

// Vocabulary describes one identifier namespace: how to recognize its local
// IDs, how to repair common malformations, and the canonical curie prefix to
// emit.
type Vocabulary struct {
	// Prefix is the canonical curie prefix, with Biolink capitalization
	// (e.g. "CHEBI", "NCBIGene", "UniProtKB").
	Prefix string

	// Validate reports whether a cleaned local ID is well-formed.
	Validate ValidatorFunc

	// Clean optionally repairs a raw local ID before validation. Nil means
	// the value is validated as-is.
	Clean CleanerFunc

	// Aliases are alternate field-name spellings that resolve to this
	// vocabulary (e.g. "pubchem" for "pubchem.compound").
	Aliases []string

	// IRI is the resolvable IRI root for this namespace, when one exists.
	IRI string
}

// builtinVocabularies maps a lowercase vocabulary name to its definition.
// Names follow the identifiers.org convention of dotted sub-namespaces
// ("kegg.compound"). The map is keyed by the name a dataset column would
// reduce to, so lookups stay a single map access.
var builtinVocabularies = map[string]Vocabulary{
	// Chemicals and metabolites.
	"cas": {
		Prefix:   "CAS",
		Validate: isCASID,
		IRI:      "https://commonchemistry.cas.org/results?q=",
	},
	"chebi": {
		Prefix:   "CHEBI",
		Validate: isPositiveIntID,
		IRI:      "http://purl.obolibrary.org/obo/CHEBI_",
	},
	"chembl.compound": {
		Prefix:   "CHEMBL.COMPOUND",
		Validate: isChemblID,
		Aliases:  []string{"chembl"},
		IRI:      "https://www.ebi.ac.uk/chembl/compound_report_card/",
	},
	"drugbank": {
		Prefix:   "DRUGBANK",
		Validate: isDrugbankID,
		IRI:      "https://go.drugbank.com/drugs/",
	},
	"gtopdb": {
		Prefix:   "GTOPDB",
		Validate: isGtopdbID,
		Aliases:  []string{"iuphar"},
	},
	"hmdb": {
		Prefix:   "HMDB",
		Validate: isHMDBID,
		Clean:    cleanHMDBID,
		IRI:      "https://hmdb.ca/metabolites/",
	},
	"inchikey": {
		Prefix:   "INCHIKEY",
		Validate: isInchikeyID,
	},
	"kegg": {
		Prefix:   "KEGG",
		Validate: isKeggGenericID,
		IRI:      "https://www.kegg.jp/entry/",
	},
	"kegg.compound": {
		Prefix:   "KEGG.COMPOUND",
		Validate: isKeggCompoundID,
		IRI:      "https://www.kegg.jp/entry/",
	},
	"kegg.drug": {
		Prefix:   "KEGG.DRUG",
		Validate: isKeggDrugID,
		IRI:      "https://www.kegg.jp/entry/",
	},
	"kegg.glycan": {
		Prefix:   "KEGG.GLYCAN",
		Validate: isKeggGlycanID,
		IRI:      "https://www.kegg.jp/entry/",
	},
	"kegg.reaction": {
		Prefix:   "KEGG.REACTION",
		Validate: isKeggReactionID,
		IRI:      "https://www.kegg.jp/entry/",
	},
	"lipidbank": {
		Prefix:   "LIPIDBANK",
		Validate: isLipidbankID,
	},
	"lipidmaps": {
		Prefix:   "LIPIDMAPS",
		Validate: isLipidmapsID,
		Clean:    stripPrefix("LM"),
		Aliases:  []string{"lm"},
		IRI:      "https://www.lipidmaps.org/databases/lmsd/",
	},
	"plantfa": {
		Prefix:   "PLANTFA",
		Validate: isPlantfaID,
	},
	"pubchem.compound": {
		Prefix:   "PUBCHEM.COMPOUND",
		Validate: isPositiveIntID,
		Aliases:  []string{"pubchem"},
		IRI:      "https://pubchem.ncbi.nlm.nih.gov/compound/",
	},
	"rm": {
		Prefix:   "RM",
		Validate: isRefmetID,
		Clean:    cleanRefmetID,
		Aliases:  []string{"refmet"},
	},
	"smiles": {
		Prefix:   "SMILES",
		Validate: isSMILESString,
	},
	"swisslipids": {
		Prefix:   "SLM",
		Validate: isSwissLipidsID,
		Clean:    stripPrefix("SLM:", "SLM"),
		Aliases:  []string{"slm"},
		IRI:      "https://www.swisslipids.org/#/entity/SLM:",
	},
	"unii": {
		Prefix:   "UNII",
		Validate: isUNIIID,
	},

	// Genes, proteins, and sequence features.
	"araport": {
		Prefix:   "TAIR",
		Validate: isAraportID,
		Aliases:  []string{"tair"},
	},
	"complexportal": {
		Prefix:   "ComplexPortal",
		Validate: isComplexportalID,
	},
	"dbsnp": {
		Prefix:   "DBSNP",
		Validate: isDbSNPID,
		Aliases:  []string{"rsid"},
	},
	"dictybase.gene": {
		Prefix:   "dictyBase",
		Validate: isDictybaseGeneID,
		Aliases:  []string{"dictybase"},
	},
	"ec": {
		Prefix:   "EC",
		Validate: isECID,
		Aliases:  []string{"eccode", "enzyme"},
		IRI:      "https://enzyme.expasy.org/EC/",
	},
	"ensembl": {
		Prefix:   "ENSEMBL",
		Validate: isEnsemblGeneID,
		IRI:      "https://identifiers.org/ensembl:",
	},
	"ensemblgenomes": {
		Prefix:   "EnsemblGenomes",
		Validate: isEnsemblGenomesID,
	},
	"flybase": {
		Prefix:   "FB",
		Validate: isFlybaseID,
		Aliases:  []string{"fb"},
	},
	"mirbase": {
		Prefix:   "mirbase",
		Validate: isMirbaseID,
	},
	"mirdb": {
		Prefix:   "MIRDB",
		Validate: isMirdbID,
	},
	"ncbigene": {
		Prefix:   "NCBIGene",
		Validate: isNCBIGeneID,
		Aliases:  []string{"entrez", "entrezgene"},
		IRI:      "https://www.ncbi.nlm.nih.gov/gene/",
	},
	"pfam": {
		Prefix:   "PFAM",
		Validate: isPfamID,
	},
	"pharmvar": {
		Prefix:   "PHARMVAR",
		Validate: isPharmvarID,
	},
	"pombase": {
		Prefix:   "PomBase",
		Validate: isPombaseID,
	},
	"pr": {
		Prefix:   "PR",
		Validate: isPRID,
		IRI:      "http://purl.obolibrary.org/obo/PR_",
	},
	"sgd": {
		Prefix:   "SGD",
		Validate: isSGDID,
	},
	"uniprot": {
		Prefix:   "UniProtKB",
		Validate: isUniprotID,
		Aliases:  []string{"uniprotkb", "swissprot"},
		IRI:      "https://www.uniprot.org/uniprotkb/",
	},
	"wormbase": {
		Prefix:   "WB",
		Validate: isWormbaseGeneID,
		Aliases:  []string{"wb"},
	},
	"zfin": {
		Prefix:   "ZFIN",
		Validate: isZFINID,
	},
	"cytoband": {
		Prefix:   "CYTOBAND",
		Validate: isCytobandID,
	},

	// Diseases, phenotypes, and clinical terminologies.
	"atc": {
		Prefix:   "ATC",
		Validate: isATCID,
	},
	"chv": {
		Prefix:   "CHV",
		Validate: isChvID,
	},
	"doid": {
		Prefix:   "DOID",
		Validate: isDOIDID,
		IRI:      "http://purl.obolibrary.org/obo/DOID_",
	},
	"efo": {
		Prefix:   "EFO",
		Validate: isEFOID,
		IRI:      "http://www.ebi.ac.uk/efo/EFO_",
	},
	"hcpcs": {
		Prefix:   "HCPCS",
		Validate: isHCPCSID,
	},
	"hp": {
		Prefix:   "HP",
		Validate: isSevenDigitID,
		Aliases:  []string{"hpo"},
		IRI:      "http://purl.obolibrary.org/obo/HP_",
	},
	"icd9": {
		Prefix:   "ICD9",
		Validate: isICD9ID,
		Aliases:  []string{"icd9cm"},
	},
	"icd10": {
		Prefix:   "ICD10",
		Validate: isICD10ID,
		Aliases:  []string{"icd10cm"},
	},
	"icd10pcs": {
		Prefix:   "ICD10PCS",
		Validate: isICD10PCSID,
	},
	"loinc": {
		Prefix:   "LOINC",
		Validate: isLOINCID,
	},
	"meddra": {
		Prefix:   "MEDDRA",
		Validate: isMeddraID,
	},
	"mesh": {
		Prefix:   "MESH",
		Validate: isMeshID,
		Aliases:  []string{"msh"},
		IRI:      "https://meshb.nlm.nih.gov/record/ui?ui=",
	},
	"mondo": {
		Prefix:   "MONDO",
		Validate: isMONDOID,
		IRI:      "http://purl.obolibrary.org/obo/MONDO_",
	},
	"ncit": {
		Prefix:   "NCIT",
		Validate: isNCITID,
		IRI:      "http://purl.obolibrary.org/obo/NCIT_",
	},
	"ndfrt": {
		Prefix:   "NDFRT",
		Validate: isNDFRTID,
	},
	"omim": {
		Prefix:   "OMIM",
		Validate: isOMIMID,
		Aliases:  []string{"mim"},
		IRI:      "https://omim.org/entry/",
	},
	"omim.ps": {
		Prefix:   "OMIM.PS",
		Validate: isOMIMPSID,
	},
	"pdq": {
		Prefix:   "PDQ",
		Validate: isPDQID,
	},
	"snomedct": {
		Prefix:   "SNOMEDCT",
		Validate: isSnomedCTID,
		Aliases:  []string{"snomed", "sctid"},
	},
	"umls": {
		Prefix:   "UMLS",
		Validate: isUMLSID,
		Aliases:  []string{"cui"},
	},
	"vandf": {
		Prefix:   "VANDF",
		Validate: isVANDFID,
	},

	// Ontologies.
	"bfo": {
		Prefix:   "BFO",
		Validate: isBFOID,
		IRI:      "http://purl.obolibrary.org/obo/BFO_",
	},
	"cl": {
		Prefix:   "CL",
		Validate: isCLID,
		IRI:      "http://purl.obolibrary.org/obo/CL_",
	},
	"clo": {
		Prefix:   "CLO",
		Validate: isCLOID,
		IRI:      "http://purl.obolibrary.org/obo/CLO_",
	},
	"envo": {
		Prefix:   "ENVO",
		Validate: isENVOID,
		IRI:      "http://purl.obolibrary.org/obo/ENVO_",
	},
	"fbbt": {
		Prefix:   "FBbt",
		Validate: isFBbtID,
	},
	"foodon": {
		Prefix:   "FOODON",
		Validate: isFoodonID,
		IRI:      "http://purl.obolibrary.org/obo/FOODON_",
	},
	"go": {
		Prefix:   "GO",
		Validate: isGOID,
		IRI:      "http://purl.obolibrary.org/obo/GO_",
	},
	"mi": {
		Prefix:   "MI",
		Validate: isMIID,
	},
	"mod": {
		Prefix:   "MOD",
		Validate: isMODID,
	},
	"oba": {
		Prefix:   "OBA",
		Validate: isOBAID,
	},
	"obo": {
		Prefix:   "OBO",
		Validate: isOBOID,
	},
	"uberon": {
		Prefix:   "UBERON",
		Validate: isUberonID,
		IRI:      "http://purl.obolibrary.org/obo/UBERON_",
	},
	"zfa": {
		Prefix:   "ZFA",
		Validate: isZFAID,
	},

	// Pathways and reactions.
	"metacyc.pathway": {
		Prefix:   "metacyc.pathway",
		Validate: isMetacycPathwayID,
		Aliases:  []string{"metacyc"},
	},
	"metacyc.reaction": {
		Prefix:   "metacyc.reaction",
		Validate: isMetacycReactionID,
	},
	"metacyc.reaction.ec": {
		Prefix:   "metacyc.reaction",
		Validate: isMetacycECID,
	},
	"pathwhiz": {
		Prefix:   "PathWhiz",
		Validate: isPathwhizID,
	},
	"reactome": {
		Prefix:   "REACT",
		Validate: isReactomeID,
		Aliases:  []string{"react"},
		IRI:      "https://reactome.org/content/detail/",
	},
	"rhea": {
		Prefix:   "RHEA",
		Validate: isRheaID,
	},
	"smpdb": {
		Prefix:   "SMPDB",
		Validate: isSMPDBID,
		Aliases:  []string{"pathbank"},
		IRI:      "https://smpdb.ca/view/",
	},
	"ttd.target": {
		Prefix:   "ttd.target",
		Validate: isTTDTargetID,
		Aliases:  []string{"ttd"},
	},
	"wikipathways": {
		Prefix:   "WIKIPATHWAYS",
		Validate: isWikipathwaysID,
		Clean:    cleanWikiPathwaysID,
		Aliases:  []string{"wp"},
		IRI:      "https://www.wikipathways.org/pathways/",
	},

	// Organisms, cell lines, and geography.
	"bvbrc": {
		Prefix:   "BVBRC",
		Validate: isBVBRCID,
	},
	"cellosaurus": {
		Prefix:   "Cellosaurus",
		Validate: isCellosaurusID,
		Aliases:  []string{"cvcl"},
	},
	"geonames": {
		Prefix:   "GEONAMES",
		Validate: isGeonamesID,
	},
	"ncbitaxon": {
		Prefix:   "NCBITaxon",
		Validate: isPositiveIntID,
		Aliases:  []string{"taxonomy", "taxid"},
		IRI:      "https://www.ncbi.nlm.nih.gov/Taxonomy/Browser/wwwtax.cgi?id=",
	},
	"uszipcode": {
		Prefix:   "USZIPCODE",
		Validate: isUSZipcodeID,
		Clean:    cleanUSZipcodeID,
		Aliases:  []string{"zip", "zipcode"},
	},
	"fips.place": {
		Prefix:   "FIPS.PLACE",
		Validate: isFipsPlaceID,
	},
	"fips.state": {
		Prefix:   "FIPS.STATE",
		Validate: isFipsStateID,
	},

	// Survey and public health measure namespaces.
	"ahrq.sdoh": {
		Prefix:   "AHRQ.SDOH",
		Validate: isAhrqID,
	},
	"cdc.svi": {
		Prefix:   "CDC.SVI",
		Validate: isCdcsviID,
	},
	"chr": {
		Prefix:   "CHR",
		Validate: isChrID,
	},
	"hps": {
		Prefix:   "HPS",
		Validate: isHpsID,
	},
	"nhanes": {
		Prefix:   "NHANES",
		Validate: isNhanesID,
	},
	"vesiclepedia": {
		Prefix:   "Vesiclepedia",
		Validate: isVesiclepediaID,
	},
}

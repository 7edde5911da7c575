package domain

import (
	"regexp"
	"strconv"
)

// FieldDescriptor carries the validation metadata for one named sample
// field, together with typed accessors used by validators, payload mapping
// and spreadsheet import/export.
type FieldDescriptor struct {
	Name           string
	STSName        string
	Required       bool
	AllowedValues  []string
	SplitPattern   *regexp.Regexp
	ErrorPattern   *regexp.Regexp
	WarningPattern *regexp.Regexp
	Get            func(*Sample) string
	Set            func(*Sample, string)
}

// IdentifierColumn is a pipeline-assigned output column appended to
// exported manifests.
type IdentifierColumn struct {
	Name string
	Get  func(*Sample) string
}

// SpecimenIDPattern is one naming convention accepted for a collecting
// institution. Prefix anchors at the start, Suffix at the end; an empty
// part is not checked.
type SpecimenIDPattern struct {
	Prefix string
	Suffix *regexp.Regexp
}

var (
	pipeSplit = regexp.MustCompile(`\s*\|\s*`)

	seriesPattern    = regexp.MustCompile(`^\d+$`)
	rackTubePattern  = regexp.MustCompile(`^[a-zA-Z]{2}\d{8}$`)
	collectionTimeRe = regexp.MustCompile(`^([0-1][0-9]|2[0-4]):[0-5]\d$`)
	elapsedTimeRe    = regexp.MustCompile(`^\d+|NOT_COLLECTED|NOT_PROVIDED|NOT_APPLICABLE$`)
)

var organismParts = []string{
	"WHOLE_ORGANISM", "HEAD", "THORAX", "ABDOMEN", "CEPHALOTHORAX", "BRAIN",
	"EYE", "FAT_BODY", "INTESTINE", "BODYWALL", "TERMINAL_BODY",
	"ANTERIOR_BODY", "MID_BODY", "POSTERIOR_BODY", "HEPATOPANCREAS", "LEG",
	"BLOOD", "LUNG", "HEART", "KIDNEY", "LIVER", "ENDOCRINE_TISSUE",
	"SPLEEN", "STOMACH", "PANCREAS", "MUSCLE", "MODULAR_COLONY", "TENTACLE",
	"FIN", "SKIN", "SCAT", "EGGSHELL", "SCALES", "HAIR", "GILL_ANIMAL",
	"**OTHER_SOMATIC_ANIMAL_TISSUE**", "OVIDUCT", "GONAD", "OVARY_ANIMAL",
	"TESTIS", "SPERM_SEMINAL_FLUID", "EGG",
	"**OTHER_REPRODUCTIVE_ANIMAL_TISSUE**", "WHOLE_PLANT", "SEEDLING",
	"SEED", "LEAF", "FLOWER", "BLADE", "STEM", "PETIOLE", "SHOOT", "BUD",
	"THALLUS_PLANT", "BRACT", "**OTHER_PLANT_TISSUE**", "MYCELIUM",
	"MYCORRHIZA", "SPORE_BEARING_STRUCTURE", "HOLDFAST_FUNGI", "STIPE",
	"CAP", "GILL_FUNGI", "THALLUS_FUNGI", "SPORE", "**OTHER_FUNGAL_TISSUE**",
	"NOT_COLLECTED", "NOT_APPLICABLE", "NOT_PROVIDED", "MOLLUSC_FOOT",
	"UNICELLULAR_ORGANISMS_IN_CULTURE", "MULTICELLULAR_ORGANISMS_IN_CULTURE",
}

// barcodingTissues is organismParts plus DNA_EXTRACT, which is only valid
// for the barcoding tissue column.
var barcodingTissues = func() []string {
	parts := make([]string, 0, len(organismParts)+1)
	for _, p := range organismParts {
		parts = append(parts, p)
		if p == "NOT_PROVIDED" {
			parts = append(parts, "DNA_EXTRACT")
		}
	}
	return parts
}()

var fieldDescriptors = []FieldDescriptor{
	{
		Name: "SPECIMEN_ID", Required: true, STSName: "specimen_specimen_id",
		Get: func(s *Sample) string { return s.SpecimenID },
		Set: func(s *Sample, v string) { s.SpecimenID = v },
	},
	{
		Name: "TAXON_ID", Required: true,
		Get: func(s *Sample) string {
			if s.TaxonomyID == 0 {
				return ""
			}
			return strconv.Itoa(s.TaxonomyID)
		},
		Set: func(s *Sample, v string) {
			if id, err := strconv.Atoi(v); err == nil {
				s.TaxonomyID = id
			}
		},
	},
	{
		Name: "SCIENTIFIC_NAME", Required: true,
		Get: func(s *Sample) string { return s.ScientificName },
		Set: func(s *Sample, v string) { s.ScientificName = v },
	},
	{
		Name: "FAMILY", Required: true,
		Get: func(s *Sample) string { return s.Family },
		Set: func(s *Sample, v string) { s.Family = v },
	},
	{
		Name: "GENUS", Required: true,
		Get: func(s *Sample) string { return s.Genus },
		Set: func(s *Sample, v string) { s.Genus = v },
	},
	{
		Name: "ORDER_OR_GROUP", Required: true,
		Get: func(s *Sample) string { return s.OrderOrGroup },
		Set: func(s *Sample, v string) { s.OrderOrGroup = v },
	},
	{
		Name: "COMMON_NAME",
		Get:  func(s *Sample) string { return s.CommonName },
		Set:  func(s *Sample, v string) { s.CommonName = v },
	},
	{
		// Allowed values checked against the ENA checklist.
		Name: "LIFESTAGE", Required: true,
		Get: func(s *Sample) string { return s.Lifestage },
		Set: func(s *Sample, v string) { s.Lifestage = v },
	},
	{
		Name: "SEX", Required: true,
		AllowedValues: []string{
			"FEMALE", "MALE", "HERMAPHRODITE_MONOECIOUS", "NOT_COLLECTED",
			"NOT_APPLICABLE", "NOT_PROVIDED", "ASEXUAL_MORPH", "SEXUAL_MORPH",
		},
		Get: func(s *Sample) string { return s.Sex },
		Set: func(s *Sample, v string) { s.Sex = v },
	},
	{
		Name: "ORGANISM_PART", Required: true,
		SplitPattern:  pipeSplit,
		AllowedValues: organismParts,
		Get:           func(s *Sample) string { return s.OrganismPart },
		Set:           func(s *Sample, v string) { s.OrganismPart = v },
	},
	{
		// Allowed values checked against the ENA checklist.
		Name: "GAL", Required: true, STSName: "gal_name_raw",
		Get: func(s *Sample) string { return s.GAL },
		Set: func(s *Sample, v string) { s.GAL = v },
	},
	{
		Name: "GAL_SAMPLE_ID", Required: true, STSName: "ext_id_value_GAL_SAMPLE_ID",
		Get: func(s *Sample) string { return s.GALSampleID },
		Set: func(s *Sample, v string) { s.GALSampleID = v },
	},
	{
		Name: "COLLECTED_BY", Required: true, STSName: "person_fullname_COLLECT",
		Get: func(s *Sample) string { return s.CollectedBy },
		Set: func(s *Sample, v string) { s.CollectedBy = v },
	},
	{
		Name: "COLLECTOR_AFFILIATION", Required: true, STSName: "institution_name_COLLECT",
		Get: func(s *Sample) string { return s.CollectorAffiliation },
		Set: func(s *Sample, v string) { s.CollectorAffiliation = v },
	},
	{
		Name: "DATE_OF_COLLECTION", Required: true, STSName: "sample_col_date",
		Get: func(s *Sample) string { return s.DateOfCollection },
		Set: func(s *Sample, v string) { s.DateOfCollection = v },
	},
	{
		Name: "COLLECTION_LOCATION", Required: true, STSName: "location_location",
		Get: func(s *Sample) string { return s.CollectionLocation },
		Set: func(s *Sample, v string) { s.CollectionLocation = v },
	},
	{
		Name: "DECIMAL_LATITUDE", Required: true, STSName: "location_lat",
		Get: func(s *Sample) string { return s.DecimalLatitude },
		Set: func(s *Sample, v string) { s.DecimalLatitude = v },
	},
	{
		Name: "DECIMAL_LONGITUDE", Required: true, STSName: "location_long",
		Get: func(s *Sample) string { return s.DecimalLongitude },
		Set: func(s *Sample, v string) { s.DecimalLongitude = v },
	},
	{
		Name: "HABITAT", Required: true, STSName: "location_habitat",
		Get: func(s *Sample) string { return s.Habitat },
		Set: func(s *Sample, v string) { s.Habitat = v },
	},
	{
		Name: "IDENTIFIED_BY", Required: true, STSName: "person_fullname_IDENTIFY",
		Get: func(s *Sample) string { return s.IdentifiedBy },
		Set: func(s *Sample, v string) { s.IdentifiedBy = v },
	},
	{
		Name: "IDENTIFIER_AFFILIATION", Required: true, STSName: "institution_name_IDENTIFY",
		Get: func(s *Sample) string { return s.IdentifierAffiliation },
		Set: func(s *Sample, v string) { s.IdentifierAffiliation = v },
	},
	{
		Name: "VOUCHER_ID", Required: true, STSName: "sample_voucherid",
		Get: func(s *Sample) string { return s.VoucherID },
		Set: func(s *Sample, v string) { s.VoucherID = v },
	},
	{
		Name: "OTHER_INFORMATION",
		Get:  func(s *Sample) string { return s.OtherInformation },
		Set:  func(s *Sample, v string) { s.OtherInformation = v },
	},
	{
		Name: "ELEVATION", STSName: "location_elevation",
		Get: func(s *Sample) string { return s.Elevation },
		Set: func(s *Sample, v string) { s.Elevation = v },
	},
	{
		Name: "DEPTH", STSName: "location_depth",
		Get: func(s *Sample) string { return s.Depth },
		Set: func(s *Sample, v string) { s.Depth = v },
	},
	{
		Name: "RELATIONSHIP", STSName: "sample_relationship",
		Get: func(s *Sample) string { return s.RelationshipNote },
		Set: func(s *Sample, v string) { s.RelationshipNote = v },
	},
	{
		Name:          "SYMBIONT",
		AllowedValues: []string{"TARGET", "SYMBIONT"},
		Get:           func(s *Sample) string { return s.Symbiont },
		Set:           func(s *Sample, v string) { s.Symbiont = v },
	},
	{
		Name: "CULTURE_OR_STRAIN_ID",
		Get:  func(s *Sample) string { return s.CultureOrStrainID },
		Set:  func(s *Sample, v string) { s.CultureOrStrainID = v },
	},
	{
		Name: "SERIES", ErrorPattern: seriesPattern,
		Get: func(s *Sample) string { return s.Series },
		Set: func(s *Sample, v string) { s.Series = v },
	},
	{
		Name: "RACK_OR_PLATE_ID", WarningPattern: rackTubePattern,
		Get: func(s *Sample) string { return s.RackOrPlateID },
		Set: func(s *Sample, v string) { s.RackOrPlateID = v },
	},
	{
		Name: "TUBE_OR_WELL_ID", WarningPattern: rackTubePattern,
		Get: func(s *Sample) string { return s.TubeOrWellID },
		Set: func(s *Sample, v string) { s.TubeOrWellID = v },
	},
	{
		Name: "TAXON_REMARKS",
		Get:  func(s *Sample) string { return s.TaxonRemarks },
		Set:  func(s *Sample, v string) { s.TaxonRemarks = v },
	},
	{
		Name: "INFRASPECIFIC_EPITHET",
		Get:  func(s *Sample) string { return s.InfraspecificEpithet },
		Set:  func(s *Sample, v string) { s.InfraspecificEpithet = v },
	},
	{
		Name: "COLLECTOR_SAMPLE_ID", STSName: "ext_id_value_COL_SAMPLE_ID",
		Get: func(s *Sample) string { return s.CollectorSampleID },
		Set: func(s *Sample, v string) { s.CollectorSampleID = v },
	},
	{
		Name: "GRID_REFERENCE", STSName: "location_grid_reference",
		Get: func(s *Sample) string { return s.GridReference },
		Set: func(s *Sample, v string) { s.GridReference = v },
	},
	{
		Name: "TIME_OF_COLLECTION", ErrorPattern: collectionTimeRe,
		Get: func(s *Sample) string { return s.TimeOfCollection },
		Set: func(s *Sample, v string) { s.TimeOfCollection = v },
	},
	{
		Name: "DESCRIPTION_OF_COLLECTION_METHOD", STSName: "cmethod_method",
		Get: func(s *Sample) string { return s.CollectionMethod },
		Set: func(s *Sample, v string) { s.CollectionMethod = v },
	},
	{
		Name: "DIFFICULT_OR_HIGH_PRIORITY_SAMPLE",
		AllowedValues: []string{
			"HIGH_PRIORITY", "DIFFICULT", "NOT_APPLICABLE", "NOT_PROVIDED",
			"NOT_COLLECTED", "FULL_CURATION",
		},
		Get: func(s *Sample) string { return s.DifficultOrHighPriority },
		Set: func(s *Sample, v string) { s.DifficultOrHighPriority = v },
	},
	{
		Name: "IDENTIFIED_HOW", STSName: "imethod_method",
		Get: func(s *Sample) string { return s.IdentifiedHow },
		Set: func(s *Sample, v string) { s.IdentifiedHow = v },
	},
	{
		Name: "SPECIMEN_ID_RISK", STSName: "sample_specimen_risk",
		AllowedValues: []string{"Y", "N"},
		Get:           func(s *Sample) string { return s.SpecimenIDRisk },
		Set:           func(s *Sample, v string) { s.SpecimenIDRisk = v },
	},
	{
		Name: "PRESERVED_BY", STSName: "person_fullname_PRESERVE",
		Get: func(s *Sample) string { return s.PreservedBy },
		Set: func(s *Sample, v string) { s.PreservedBy = v },
	},
	{
		Name: "PRESERVER_AFFILIATION", STSName: "institution_name_PRESERVE",
		Get: func(s *Sample) string { return s.PreserverAffiliation },
		Set: func(s *Sample, v string) { s.PreserverAffiliation = v },
	},
	{
		Name: "PRESERVATION_APPROACH", STSName: "papproach_approach",
		Get: func(s *Sample) string { return s.PreservationApproach },
		Set: func(s *Sample, v string) { s.PreservationApproach = v },
	},
	{
		Name: "PRESERVATIVE_SOLUTION", STSName: "psolution_solution",
		Get: func(s *Sample) string { return s.PreservativeSolution },
		Set: func(s *Sample, v string) { s.PreservativeSolution = v },
	},
	{
		Name:         "TIME_ELAPSED_FROM_COLLECTION_TO_PRESERVATION",
		STSName:      "sample_pre_elapsed",
		ErrorPattern: elapsedTimeRe,
		Get:          func(s *Sample) string { return s.TimeToPreservation },
		Set:          func(s *Sample, v string) { s.TimeToPreservation = v },
	},
	{
		Name: "DATE_OF_PRESERVATION", STSName: "sample_pre_date",
		Get: func(s *Sample) string { return s.DateOfPreservation },
		Set: func(s *Sample, v string) { s.DateOfPreservation = v },
	},
	{
		Name: "SIZE_OF_TISSUE_IN_TUBE", STSName: "tissue_size_size",
		AllowedValues: []string{
			"VS", "S", "M", "L", "SINGLE_CELL", "NOT_COLLECTED",
			"NOT_APPLICABLE", "NOT_PROVIDED",
		},
		Get: func(s *Sample) string { return s.SizeOfTissueInTube },
		Set: func(s *Sample, v string) { s.SizeOfTissueInTube = v },
	},
	{
		Name: "TISSUE_REMOVED_FOR_BARCODING", STSName: "sample_tremoved",
		AllowedValues: []string{
			"Y", "N", "NOT_COLLECTED", "NOT_APPLICABLE", "NOT_PROVIDED",
		},
		Get: func(s *Sample) string { return s.TissueRemovedForBarcoding },
		Set: func(s *Sample, v string) { s.TissueRemovedForBarcoding = v },
	},
	{
		Name: "PLATE_ID_FOR_BARCODING", STSName: "sample_bplateid",
		Get: func(s *Sample) string { return s.PlateIDForBarcoding },
		Set: func(s *Sample, v string) { s.PlateIDForBarcoding = v },
	},
	{
		Name: "TUBE_OR_WELL_ID_FOR_BARCODING", STSName: "sample_btubeid",
		Get: func(s *Sample) string { return s.TubeOrWellIDForBarcoding },
		Set: func(s *Sample, v string) { s.TubeOrWellIDForBarcoding = v },
	},
	{
		Name:          "TISSUE_FOR_BARCODING",
		AllowedValues: barcodingTissues,
		Get:           func(s *Sample) string { return s.TissueForBarcoding },
		Set:           func(s *Sample, v string) { s.TissueForBarcoding = v },
	},
	{
		Name: "BARCODE_PLATE_PRESERVATIVE", STSName: "sample_bplate_pre",
		Get: func(s *Sample) string { return s.BarcodePlatePreservative },
		Set: func(s *Sample, v string) { s.BarcodePlatePreservative = v },
	},
	{
		Name: "PURPOSE_OF_SPECIMEN", STSName: "specimen_purpose_purpose",
		AllowedValues: []string{
			"REFERENCE_GENOME", "SHORT_READ_SEQUENCING", "DNA_BARCODING_ONLY",
			"RNA_SEQUENCING", "R&D",
		},
		Get: func(s *Sample) string { return s.PurposeOfSpecimen },
		Set: func(s *Sample, v string) { s.PurposeOfSpecimen = v },
	},
	{
		Name: "HAZARD_GROUP", STSName: "hazard_group_level",
		AllowedValues: []string{"HG1", "HG2", "HG3"},
		Get:           func(s *Sample) string { return s.HazardGroup },
		Set:           func(s *Sample, v string) { s.HazardGroup = v },
	},
	{
		Name: "REGULATORY_COMPLIANCE", STSName: "sample_reg_compliance",
		AllowedValues: []string{"Y", "N", "NOT_APPLICABLE"},
		Get:           func(s *Sample) string { return s.RegulatoryCompliance },
		Set:           func(s *Sample, v string) { s.RegulatoryCompliance = v },
	},
	{
		// Format checked against the ENA checklist.
		Name: "ORIGINAL_COLLECTION_DATE", STSName: "sample_original_collection_date",
		Get: func(s *Sample) string { return s.OriginalCollectionDate },
		Set: func(s *Sample, v string) { s.OriginalCollectionDate = v },
	},
	{
		Name: "ORIGINAL_GEOGRAPHIC_LOCATION", STSName: "sample_original_geographic_location",
		Get: func(s *Sample) string { return s.OriginalGeographicLocation },
		Set: func(s *Sample, v string) { s.OriginalGeographicLocation = v },
	},
	{
		Name: "BARCODE_HUB", STSName: "sample_barcode_hub",
		Get: func(s *Sample) string { return s.BarcodeHub },
		Set: func(s *Sample, v string) { s.BarcodeHub = v },
	},
}

// Fields returns the ordered descriptor table for all named sample fields.
// The table is built once; callers must not mutate it.
func Fields() []FieldDescriptor {
	return fieldDescriptors
}

// FindField returns the descriptor with the given name.
func FindField(name string) (FieldDescriptor, bool) {
	for _, f := range fieldDescriptors {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

var identifierColumns = []IdentifierColumn{
	{Name: "tolId", Get: func(s *Sample) string { return s.ToLID }},
	{Name: "sampleSameAs", Get: func(s *Sample) string { return s.SameAs() }},
	{Name: "sampleDerivedFrom", Get: func(s *Sample) string { return s.DerivedFrom() }},
	{Name: "sampleSymbiontOf", Get: func(s *Sample) string { return s.SymbiontOf() }},
	{Name: "biosampleAccession", Get: func(s *Sample) string { return s.BiosampleAccession }},
	{Name: "sraAccession", Get: func(s *Sample) string { return s.SRAAccession }},
	{Name: "submissionAccession", Get: func(s *Sample) string { return s.SubmissionAccession }},
	{Name: "submissionError", Get: func(s *Sample) string { return s.SubmissionError }},
}

// IdentifierColumns returns the ordered list of pipeline-assigned columns
// appended to exported manifests.
func IdentifierColumns() []IdentifierColumn {
	return identifierColumns
}

// SpecimenIDPatterns maps an upper-cased GAL name to the specimen naming
// conventions it accepts. GALs absent from the table are not checked.
var SpecimenIDPatterns = map[string][]SpecimenIDPattern{
	"UNIVERSITY OF OXFORD":              {{Prefix: "Ox", Suffix: regexp.MustCompile(`\d{6}$`)}},
	"MARINE BIOLOGICAL ASSOCIATION":     {{Prefix: "MBA", Suffix: regexp.MustCompile(`-\d{6}-\d{3}[A-Z]$`)}},
	"ROYAL BOTANIC GARDENS KEW":         {{Prefix: "KDTOL", Suffix: regexp.MustCompile(`\d{5}$`)}},
	"ROYAL BOTANIC GARDEN EDINBURGH":    {{Prefix: "EDTOL", Suffix: regexp.MustCompile(`\d{5}$`)}},
	"EARLHAM INSTITUTE":                 {{Prefix: "EI_", Suffix: regexp.MustCompile(`\d{5}$`)}},
	"NATURAL HISTORY MUSEUM":            {{Prefix: "NHMUK", Suffix: regexp.MustCompile(`\d{9}$`)}},
	"SANGER INSTITUTE":                  {{Prefix: "SAN", Suffix: regexp.MustCompile(`\d{7}$`)}, {Prefix: "BLAX", Suffix: regexp.MustCompile(`\d{7}$`)}},
	"UNIVERSITY OF DERBY":               {{Prefix: "UDUK"}},
	"DALHOUSIE UNIVERSITY":              {{Prefix: "DU"}},
	"NOVA SOUTHEASTERN UNIVERSITY":      {{Prefix: "NSU"}},
	"GEOMAR HELMHOLTZ CENTRE":           {{Prefix: "GHC"}},
	"UNIVERSITY OF BRITISH COLUMBIA":    {{Prefix: "UOBC"}},
	"UNIVERSITY OF VIENNA (MOLLUSC)":    {{Prefix: "VIEM"}},
	"QUEEN MARY UNIVERSITY OF LONDON":   {{Prefix: "QMOUL"}},
	"THE SAINSBURY LABORATORY":          {{Prefix: "SL"}},
	"PORTLAND STATE UNIVERSITY":         {{Prefix: "PORT"}},
	"UNIVERSITY OF RHODE ISLAND":        {{Prefix: "URI"}},
	"UNIVERSITY OF CALIFORNIA":          {{Prefix: "UCALI"}},
	"SENCKENBERG RESEARCH INSTITUTE":    {{Prefix: "SENCK"}},
	"UNIVERSITY OF VIENNA (CEPHALOPOD)": {{Prefix: "VIEC"}},
	"UNIVERSITY OF ORGEON":              {{Prefix: "UOREG"}},
}

// MatchesSpecimenIDPattern reports whether the specimen ID satisfies at
// least one of the patterns: the prefix (when present) must anchor at the
// start and the same pattern's suffix (when present) must anchor at the
// end.
func MatchesSpecimenIDPattern(patterns []SpecimenIDPattern, specimenID string) bool {
	for _, p := range patterns {
		if p.Prefix != "" && !hasPrefix(specimenID, p.Prefix) {
			continue
		}
		if p.Suffix != nil && !p.Suffix.MatchString(specimenID) {
			continue
		}
		return true
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

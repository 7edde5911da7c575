// Package domain defines the core persistent entities, field metadata, and
// validation primitives used by the submissions service.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in a persistence bucket.
type EntityType string

// Supported entity type identifiers used as persistence bucket names.
const (
	// EntityManifest identifies a manifest record, samples included.
	EntityManifest EntityType = "manifest"
	// EntitySpecimen identifies a registered specimen record.
	EntitySpecimen EntityType = "specimen"
	// EntityUser identifies a submitting user record.
	EntityUser EntityType = "user"
)

// DefaultProjectName is applied to manifests submitted without a project.
const DefaultProjectName = "ToL"

// UnidentifiedTaxonomyID is the NCBI placeholder taxon for unidentified
// organisms. Samples carrying it are excluded from name issuance and from
// the archival sample bundle.
const UnidentifiedTaxonomyID = 32644

// RelationshipKind enumerates how a sample relates to its physical specimen.
type RelationshipKind string

// Relationship kinds assigned by relationship resolution. A whole organism
// is the specimen itself, symbionts hang off it, everything else derives
// from it.
const (
	RelationSameAs      RelationshipKind = "same_as"
	RelationDerivedFrom RelationshipKind = "derived_from"
	RelationSymbiontOf  RelationshipKind = "symbiont_of"
)

// Relationship links a sample to an already-accessioned specimen. The zero
// value means the relationship has not been resolved yet.
type Relationship struct {
	Kind      RelationshipKind `json:"kind,omitempty"`
	Accession string           `json:"accession,omitempty"`
}

// IsSet reports whether relationship resolution has assigned an accession.
func (r Relationship) IsSet() bool {
	return r.Kind != "" && r.Accession != ""
}

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExtraField is a submitted name/value pair that does not match any named
// sample field. Order of submission is preserved.
type ExtraField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Sample is one physical or biological sample submitted in a manifest. The
// empty string means a field was not given. TaxonomyID zero means not given.
type Sample struct {
	Base
	Row        int    `json:"row"`
	SpecimenID string `json:"specimen_id"`
	TaxonomyID int    `json:"taxonomy_id"`

	ScientificName string `json:"scientific_name"`
	Family         string `json:"family"`
	Genus          string `json:"genus"`
	OrderOrGroup   string `json:"order_or_group"`
	CommonName     string `json:"common_name"`
	Lifestage      string `json:"lifestage"`
	Sex            string `json:"sex"`
	OrganismPart   string `json:"organism_part"`

	GAL         string `json:"gal"`
	GALSampleID string `json:"gal_sample_id"`

	CollectedBy           string `json:"collected_by"`
	CollectorAffiliation  string `json:"collector_affiliation"`
	DateOfCollection      string `json:"date_of_collection"`
	CollectionLocation    string `json:"collection_location"`
	DecimalLatitude       string `json:"decimal_latitude"`
	DecimalLongitude      string `json:"decimal_longitude"`
	Habitat               string `json:"habitat"`
	IdentifiedBy          string `json:"identified_by"`
	IdentifierAffiliation string `json:"identifier_affiliation"`
	VoucherID             string `json:"voucher_id"`
	OtherInformation      string `json:"other_information"`
	Elevation             string `json:"elevation"`
	Depth                 string `json:"depth"`
	RelationshipNote      string `json:"relationship_note"`
	Symbiont              string `json:"symbiont"`
	CultureOrStrainID     string `json:"culture_or_strain_id"`

	Series                  string `json:"series"`
	RackOrPlateID           string `json:"rack_or_plate_id"`
	TubeOrWellID            string `json:"tube_or_well_id"`
	TaxonRemarks            string `json:"taxon_remarks"`
	InfraspecificEpithet    string `json:"infraspecific_epithet"`
	CollectorSampleID       string `json:"collector_sample_id"`
	GridReference           string `json:"grid_reference"`
	TimeOfCollection        string `json:"time_of_collection"`
	CollectionMethod        string `json:"description_of_collection_method"`
	DifficultOrHighPriority string `json:"difficult_or_high_priority_sample"`
	IdentifiedHow           string `json:"identified_how"`
	SpecimenIDRisk          string `json:"specimen_id_risk"`

	PreservedBy          string `json:"preserved_by"`
	PreserverAffiliation string `json:"preserver_affiliation"`
	PreservationApproach string `json:"preservation_approach"`
	PreservativeSolution string `json:"preservative_solution"`
	TimeToPreservation   string `json:"time_elapsed_from_collection_to_preservation"`
	DateOfPreservation   string `json:"date_of_preservation"`
	SizeOfTissueInTube   string `json:"size_of_tissue_in_tube"`

	TissueRemovedForBarcoding string `json:"tissue_removed_for_barcoding"`
	PlateIDForBarcoding       string `json:"plate_id_for_barcoding"`
	TubeOrWellIDForBarcoding  string `json:"tube_or_well_id_for_barcoding"`
	TissueForBarcoding        string `json:"tissue_for_barcoding"`
	BarcodePlatePreservative  string `json:"barcode_plate_preservative"`

	PurposeOfSpecimen          string `json:"purpose_of_specimen"`
	HazardGroup                string `json:"hazard_group"`
	RegulatoryCompliance       string `json:"regulatory_compliance"`
	OriginalCollectionDate     string `json:"original_collection_date"`
	OriginalGeographicLocation string `json:"original_geographic_location"`
	BarcodeHub                 string `json:"barcode_hub"`

	// Assigned by the identifier pipeline, never by the submitter.
	ToLID               string       `json:"tolid"`
	Relationship        Relationship `json:"relationship"`
	BiosampleAccession  string       `json:"biosample_accession"`
	SRAAccession        string       `json:"sra_accession"`
	SubmissionAccession string       `json:"submission_accession"`
	SubmissionError     string       `json:"submission_error"`

	Extra []ExtraField `json:"extra,omitempty"`
}

// IsSymbiont reports whether the sample represents a symbiont rather than a
// target organism.
func (s *Sample) IsSymbiont() bool {
	return s.Symbiont == "SYMBIONT"
}

var locationSplit = regexp.MustCompile(`\s*\|\s*`)

// CollectionCountry returns the country or sea portion of the collection
// location, which is the first pipe-delimited token.
func (s *Sample) CollectionCountry() string {
	return locationSplit.Split(s.CollectionLocation, -1)[0]
}

// CollectionRegion returns the region and locality portion of the collection
// location: every token after the country, re-joined.
func (s *Sample) CollectionRegion() string {
	parts := locationSplit.Split(s.CollectionLocation, -1)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " | ")
}

// SetRelationship records the sample's resolved relationship. Assigning one
// kind clears any previously held kind, so at most one is ever set.
func (s *Sample) SetRelationship(kind RelationshipKind, accession string) {
	s.Relationship = Relationship{Kind: kind, Accession: accession}
}

// SameAs returns the accession of the specimen this sample is identical to,
// or the empty string.
func (s *Sample) SameAs() string {
	return s.relationshipAccession(RelationSameAs)
}

// DerivedFrom returns the accession of the specimen this sample derives
// from, or the empty string.
func (s *Sample) DerivedFrom() string {
	return s.relationshipAccession(RelationDerivedFrom)
}

// SymbiontOf returns the accession of the specimen this sample lives on or
// in, or the empty string.
func (s *Sample) SymbiontOf() string {
	return s.relationshipAccession(RelationSymbiontOf)
}

func (s *Sample) relationshipAccession(kind RelationshipKind) string {
	if s.Relationship.Kind == kind {
		return s.Relationship.Accession
	}
	return ""
}

// Specimen is the de-duplicated physical organism one or more samples were
// drawn from. Rows are created once relationship resolution has registered
// the specimen upstream and are never updated afterwards.
type Specimen struct {
	Base
	SpecimenID         string `json:"specimen_id"`
	BiosampleAccession string `json:"biosample_accession"`
}

// Role names recognised on user records.
const (
	RoleSubmitter = "submitter"
	RoleAdmin     = "admin"
)

// User is a registered submitter of manifests.
type User struct {
	Base
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Organisation string   `json:"organisation"`
	APIKey       string   `json:"api_key"`
	Roles        []string `json:"roles"`
}

// HasRole reports whether the user carries any of the named roles.
func (u User) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound signals a 404 from a remote authority: the looked-up entity
// is not yet known there.
var ErrNotFound = errors.New("not found")

// ErrUnknownTaxon signals that the ENA taxonomy service has no record for
// a taxonomy ID.
var ErrUnknownTaxon = errors.New("taxon not known at ENA")

// StatusError reports a non-success HTTP status from a remote authority.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// statusCode extracts the HTTP status carried by err, if any.
func statusCode(err error) (int, bool) {
	var se StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// NameRequest asks the naming service for a ToLID for one taxon/specimen
// pair.
type NameRequest struct {
	TaxonomyID int    `json:"taxonomyId"`
	SpecimenID string `json:"specimenId"`
}

// NameAssignment is the naming service's answer for one pair. An empty
// ToLID means a manual request was generated upstream instead.
type NameAssignment struct {
	TaxonomyID int
	SpecimenID string
	ToLID      string
}

// NamingService is the ToLID authority: species and specimen lookups plus
// batch name issuance.
type NamingService interface {
	// SpeciesExists returns nil when the species is known, ErrNotFound on
	// 404, and a StatusError on any other non-200 response.
	SpeciesExists(ctx context.Context, taxonomyID int) error
	// SpecimenTaxonomies returns the taxonomy IDs previously registered
	// for a specimen ID. ErrNotFound means the specimen was never used.
	SpecimenTaxonomies(ctx context.Context, specimenID string) ([]int, error)
	// AssignNames issues ToLIDs for a batch of taxon/specimen pairs.
	AssignNames(ctx context.Context, requests []NameRequest) ([]NameAssignment, error)
}

// SpecimenRecord is a previously registered specimen held by the specimen
// tracking service.
type SpecimenRecord struct {
	SpecimenID         string
	BiosampleAccession string
}

// SpecimenRegistry looks up specimens registered outside this service.
type SpecimenRegistry interface {
	// GetSpecimen returns nil with no error when the specimen is unknown.
	GetSpecimen(ctx context.Context, specimenID string) (*SpecimenRecord, error)
}

// TaxonomyRecord is the ENA taxonomy entry for one taxon. Submittable
// mirrors the service's string flag.
type TaxonomyRecord struct {
	TaxID          string `json:"taxId"`
	ScientificName string `json:"scientificName"`
	Submittable    string `json:"submittable"`
}

// TaxonomyService answers whether a taxon can be submitted to ENA.
type TaxonomyService interface {
	// Taxonomy returns ErrUnknownTaxon for the service's "No results."
	// answer and a StatusError for non-200 responses.
	Taxonomy(ctx context.Context, taxonomyID int) (TaxonomyRecord, error)
}

// AccessionService submits sample and submission documents to the archival
// drop box and returns the raw XML receipt.
type AccessionService interface {
	Submit(ctx context.Context, sampleXML, submissionXML []byte) ([]byte, error)
}

package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

type taxonConsistencyRule struct{}

// NewTaxonConsistencyRule rejects targets reusing a specimen ID with a
// different taxonomy ID. Requires rebuilt manifest trackers.
func NewTaxonConsistencyRule() domain.Validator {
	return taxonConsistencyRule{}
}

func (taxonConsistencyRule) Name() string { return "taxon_consistency" }

func (taxonConsistencyRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if sample.SpecimenID == "" || sample.TaxonomyID == 0 || sample.IsSymbiont() {
		return nil, nil
	}
	if first, ok := manifest.FirstSeenTaxon(sample.SpecimenID); ok && first != sample.TaxonomyID {
		return []domain.Finding{{
			Field:    "TAXON_ID",
			Message:  "Targets must not use the same SPECIMEN_ID with a different TAXON_ID",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

type wholeOrganismUniqueRule struct{}

// NewWholeOrganismUniqueRule rejects specimen IDs used by more than one
// WHOLE_ORGANISM sample. Requires rebuilt manifest trackers.
func NewWholeOrganismUniqueRule() domain.Validator {
	return wholeOrganismUniqueRule{}
}

func (wholeOrganismUniqueRule) Name() string { return "whole_organism_unique" }

func (wholeOrganismUniqueRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if manifest.IsDuplicateWholeOrganism(sample.SpecimenID) {
		return []domain.Finding{{
			Field:    "SPECIMEN_ID",
			Message:  "WHOLE_ORGANISM can only be used once",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

package core

import (
	"context"
	"errors"
	"fmt"

	"tolsubmissions/pkg/domain"
)

type enaSubmittableRule struct {
	taxonomy TaxonomyService
}

// NewENASubmittableRule checks the taxon against the public ENA taxonomy
// service: it must be known, submittable, and carry the sample's exact
// scientific name.
func NewENASubmittableRule(taxonomy TaxonomyService) domain.Validator {
	return enaSubmittableRule{taxonomy: taxonomy}
}

func (enaSubmittableRule) Name() string { return "ena_submittable" }

func (r enaSubmittableRule) Validate(ctx context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	record, err := r.taxonomy.Taxonomy(ctx, sample.TaxonomyID)
	if err != nil {
		if code, ok := statusCode(err); ok {
			return []domain.Finding{{
				Field:    "TAXON_ID",
				Message:  fmt.Sprintf("Communication with ENA has failed with status code %d", code),
				Severity: domain.SeverityError,
			}}, nil
		}
		if errors.Is(err, ErrUnknownTaxon) {
			return []domain.Finding{{
				Field:    "TAXON_ID",
				Message:  "Is not known at ENA",
				Severity: domain.SeverityError,
			}}, nil
		}
		return nil, err
	}

	var findings []domain.Finding
	if record.Submittable != "true" {
		findings = append(findings, domain.Finding{
			Field:    "TAXON_ID",
			Message:  "Is not ENA submittable",
			Severity: domain.SeverityError,
		})
	}
	if record.ScientificName != sample.ScientificName {
		findings = append(findings, domain.Finding{
			Field:    "SCIENTIFIC_NAME",
			Message:  "Must match ENA (expected " + record.ScientificName + ")",
			Severity: domain.SeverityError,
		})
	}
	return findings, nil
}

package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

var barcodingFields = []string{
	"PLATE_ID_FOR_BARCODING",
	"TUBE_OR_WELL_ID_FOR_BARCODING",
	"TISSUE_FOR_BARCODING",
	"BARCODE_PLATE_PRESERVATIVE",
}

type barcodingRule struct{}

// NewBarcodingRule requires the barcoding sub-fields to be unset or
// NOT_APPLICABLE unless tissue was removed for barcoding.
func NewBarcodingRule() domain.Validator {
	return barcodingRule{}
}

func (barcodingRule) Name() string { return "barcoding" }

func (barcodingRule) Validate(_ context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if sample.TissueRemovedForBarcoding == "Y" {
		return nil, nil
	}
	var findings []domain.Finding
	for _, name := range barcodingFields {
		field, ok := domain.FindField(name)
		if !ok {
			continue
		}
		if value := field.Get(sample); value != "" && value != "NOT_APPLICABLE" {
			findings = append(findings, domain.Finding{
				Field:    name,
				Message:  "If TISSUE_REMOVED_FOR_BARCODING is N, other barcoding fields must be NOT_APPLICABLE",
				Severity: domain.SeverityError,
			})
		}
	}
	return findings, nil
}

package core

import (
	"context"
	"strings"

	"tolsubmissions/pkg/domain"
)

type specimenNamingRule struct{}

// NewSpecimenNamingRule validates the specimen ID against the naming
// convention declared for the sample's GAL. ERGA-project manifests are not
// checked, and neither are GALs without a declared convention.
func NewSpecimenNamingRule() domain.Validator {
	return specimenNamingRule{}
}

func (specimenNamingRule) Name() string { return "specimen_naming" }

func (specimenNamingRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if strings.HasPrefix(manifest.ProjectName, "ERGA") {
		return nil, nil
	}
	patterns, ok := domain.SpecimenIDPatterns[sample.GAL]
	if !ok {
		return nil, nil
	}
	if !domain.MatchesSpecimenIDPattern(patterns, sample.SpecimenID) {
		return []domain.Finding{{
			Field:    "SPECIMEN_ID",
			Message:  "Does not match the required pattern for the GAL",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

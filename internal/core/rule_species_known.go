package core

import (
	"context"
	"errors"
	"fmt"

	"tolsubmissions/pkg/domain"
)

type speciesKnownRule struct {
	naming NamingService
}

// NewSpeciesKnownRule checks the sample's taxon against the ToLID species
// registry. An unknown species is only a warning; a failed exchange is an
// error carrying the status code.
func NewSpeciesKnownRule(naming NamingService) domain.Validator {
	return speciesKnownRule{naming: naming}
}

func (speciesKnownRule) Name() string { return "species_known" }

func (r speciesKnownRule) Validate(ctx context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	err := r.naming.SpeciesExists(ctx, sample.TaxonomyID)
	if err == nil {
		return nil, nil
	}
	if errors.Is(err, ErrNotFound) {
		return []domain.Finding{{
			Field:    "TAXON_ID",
			Message:  "Species not known in the ToLID service",
			Severity: domain.SeverityWarning,
		}}, nil
	}
	if code, ok := statusCode(err); ok {
		return []domain.Finding{{
			Field:    "TAXON_ID",
			Message:  fmt.Sprintf("Communication failed with the ToLID service: status code %d", code),
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, err
}

package core

import (
	"context"
	"errors"
	"fmt"

	"tolsubmissions/pkg/domain"
)

type specimenRegistryRule struct {
	naming NamingService
}

// NewSpecimenRegistryRule checks that a previously used specimen ID keeps
// its taxonomy ID. Symbionts are not checked; a 404 means first use and
// passes.
func NewSpecimenRegistryRule(naming NamingService) domain.Validator {
	return specimenRegistryRule{naming: naming}
}

func (specimenRegistryRule) Name() string { return "specimen_registry" }

func (r specimenRegistryRule) Validate(ctx context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if sample.IsSymbiont() {
		return nil, nil
	}
	taxons, err := r.naming.SpecimenTaxonomies(ctx, sample.SpecimenID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		if code, ok := statusCode(err); ok {
			return []domain.Finding{{
				Field:    "SPECIMEN_ID",
				Message:  fmt.Sprintf("Communication failed with the ToLID service: status code %d", code),
				Severity: domain.SeverityError,
			}}, nil
		}
		return nil, err
	}
	for _, taxon := range taxons {
		if taxon == sample.TaxonomyID {
			return nil, nil
		}
	}
	return []domain.Finding{{
		Field:    "SPECIMEN_ID",
		Message:  "Has been used before but with different taxonomy ID",
		Severity: domain.SeverityError,
	}}, nil
}

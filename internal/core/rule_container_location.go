package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

var containerBlankValues = []string{
	"NOT_COLLECTED", "NOT_PROVIDED", "NOT_APPLICABLE", "NA",
}

type containerNotBothNARule struct{}

// NewContainerNotBothNARule rejects samples whose rack/plate and tube/well
// identifiers are both placeholder values.
func NewContainerNotBothNARule() domain.Validator {
	return containerNotBothNARule{}
}

func (containerNotBothNARule) Name() string { return "container_not_both_na" }

func (containerNotBothNARule) Validate(_ context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if contains(containerBlankValues, sample.RackOrPlateID) && contains(containerBlankValues, sample.TubeOrWellID) {
		return []domain.Finding{{
			Field:    "TUBE_OR_WELL_ID",
			Message:  "Cannot be NA if RACK_OR_PLATE_ID is NA",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

type containerUniqueRule struct{}

// NewContainerUniqueRule rejects targets sharing a rack/tube or plate/well
// combination. Requires rebuilt manifest trackers.
func NewContainerUniqueRule() domain.Validator {
	return containerUniqueRule{}
}

func (containerUniqueRule) Name() string { return "container_unique" }

func (containerUniqueRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if sample.RackOrPlateID == "" || sample.TubeOrWellID == "" {
		return nil, nil
	}
	key := domain.ContainerKey(sample.RackOrPlateID, sample.TubeOrWellID)
	if manifest.IsDuplicateContainer(key) {
		return []domain.Finding{{
			Field:    "SYMBIONT",
			Message:  "Must only be one target specimen id per rack/tube or plate/well",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

type orphanedSymbiontRule struct{}

// NewOrphanedSymbiontRule requires every symbiont to share its rack/plate
// and tube/well with a target. Requires rebuilt manifest trackers.
func NewOrphanedSymbiontRule() domain.Validator {
	return orphanedSymbiontRule{}
}

func (orphanedSymbiontRule) Name() string { return "orphaned_symbiont" }

func (orphanedSymbiontRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	if sample.RackOrPlateID == "" || sample.TubeOrWellID == "" || !sample.IsSymbiont() {
		return nil, nil
	}
	key := domain.ContainerKey(sample.RackOrPlateID, sample.TubeOrWellID)
	if !manifest.HasTargetContainer(key) {
		return []domain.Finding{{
			Field:    "SYMBIONT",
			Message:  "All symbionts must have a TARGET with same rack/plate and tube/well",
			Severity: domain.SeverityError,
		}}, nil
	}
	return nil, nil
}

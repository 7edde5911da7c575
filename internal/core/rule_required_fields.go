package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

type requiredFieldsRule struct{}

// NewRequiredFieldsRule validates that every required field carries a
// value.
func NewRequiredFieldsRule() domain.Validator {
	return requiredFieldsRule{}
}

func (requiredFieldsRule) Name() string { return "required_fields" }

func (requiredFieldsRule) Validate(_ context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, field := range domain.Fields() {
		if field.Required && field.Get(sample) == "" {
			findings = append(findings, domain.Finding{
				Field:    field.Name,
				Message:  "A value must be given",
				Severity: domain.SeverityError,
			})
		}
	}
	return findings, nil
}

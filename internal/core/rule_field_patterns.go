package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

type fieldPatternsRule struct{}

// NewFieldPatternsRule validates fields against their declared error and
// warning patterns.
func NewFieldPatternsRule() domain.Validator {
	return fieldPatternsRule{}
}

func (fieldPatternsRule) Name() string { return "field_patterns" }

func (fieldPatternsRule) Validate(_ context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, field := range domain.Fields() {
		value := field.Get(sample)
		if value == "" {
			continue
		}
		if field.ErrorPattern != nil && !field.ErrorPattern.MatchString(value) {
			findings = append(findings, domain.Finding{
				Field:    field.Name,
				Message:  "Does not match a specific pattern",
				Severity: domain.SeverityError,
			})
		}
		if field.WarningPattern != nil && !field.WarningPattern.MatchString(value) {
			findings = append(findings, domain.Finding{
				Field:    field.Name,
				Message:  "Does not match a specific pattern",
				Severity: domain.SeverityWarning,
			})
		}
	}
	return findings, nil
}

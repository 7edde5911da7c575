package core

import (
	"context"

	"tolsubmissions/pkg/domain"
)

type allowedValuesRule struct{}

// NewAllowedValuesRule validates declared allowed-value sets. Multi-value
// fields are split on the field's split pattern and every token must be a
// case-sensitive member of the set.
func NewAllowedValuesRule() domain.Validator {
	return allowedValuesRule{}
}

func (allowedValuesRule) Name() string { return "allowed_values" }

func (allowedValuesRule) Validate(_ context.Context, _ *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, field := range domain.Fields() {
		value := field.Get(sample)
		if len(field.AllowedValues) == 0 || value == "" {
			continue
		}
		tokens := []string{value}
		if field.SplitPattern != nil {
			tokens = field.SplitPattern.Split(value, -1)
		}
		for _, token := range tokens {
			if !contains(field.AllowedValues, token) {
				findings = append(findings, domain.Finding{
					Field:    field.Name,
					Message:  "Must be an allowed value",
					Severity: domain.SeverityError,
				})
				break
			}
		}
	}
	return findings, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

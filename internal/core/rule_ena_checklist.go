package core

import (
	"context"
	"strings"

	"tolsubmissions/internal/ena"
	"tolsubmissions/pkg/domain"
)

type enaChecklistRule struct{}

// NewENAChecklistRule validates the sample's ENA projection against the
// checklist: mandatory presence, declared patterns and allowed values
// (compared case-insensitively).
func NewENAChecklistRule() domain.Validator {
	return enaChecklistRule{}
}

func (enaChecklistRule) Name() string { return "ena_checklist" }

func (enaChecklistRule) Validate(_ context.Context, manifest *domain.Manifest, sample *domain.Sample) ([]domain.Finding, error) {
	attrs := ena.Attributes(manifest.ProjectName, sample)

	var findings []domain.Finding
	for _, check := range ena.Checklist() {
		attr, present := attrs.Find(check.Name)
		if check.Mandatory && !present {
			findings = append(findings, domain.Finding{
				Field:    check.ReportField(),
				Message:  "Must be given",
				Severity: domain.SeverityError,
			})
			continue
		}
		if check.Mandatory && attr.Value == "" {
			findings = append(findings, domain.Finding{
				Field:    check.ReportField(),
				Message:  "Must not be empty",
				Severity: domain.SeverityError,
			})
			continue
		}
		if check.Pattern != nil && present && !check.Pattern.MatchString(attr.Value) {
			findings = append(findings, domain.Finding{
				Field:    check.ReportField(),
				Message:  "Must match specific pattern",
				Severity: domain.SeverityError,
			})
		}
		if len(check.Allowed) > 0 && present && !containsFold(check.Allowed, attr.Value) {
			findings = append(findings, domain.Finding{
				Field:    check.ReportField(),
				Message:  "Must be in allowed values",
				Severity: domain.SeverityError,
			})
		}
	}
	return findings, nil
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

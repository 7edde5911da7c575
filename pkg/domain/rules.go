package domain

import "context"

// Validator checks one sample in the context of its manifest. Cross-record
// validators read the manifest trackers, which the caller must rebuild
// before evaluation. Validators signal normal validation failures through
// findings only; an error return means the validator itself could not run.
type Validator interface {
	Name() string
	Validate(ctx context.Context, manifest *Manifest, sample *Sample) ([]Finding, error)
}

// ValidationEngine holds a closed, ordered list of validators and runs them
// against every sample of a manifest.
type ValidationEngine struct {
	validators []Validator
}

// NewValidationEngine constructs an engine instance.
func NewValidationEngine() *ValidationEngine {
	return &ValidationEngine{}
}

// Register appends a validator to the engine. Order of registration is the
// order of evaluation.
func (e *ValidationEngine) Register(v Validator) {
	e.validators = append(e.validators, v)
}

// Evaluate runs every validator against every sample and returns one row
// result per sample. Findings accumulate; no validator short-circuits
// another.
func (e *ValidationEngine) Evaluate(ctx context.Context, manifest *Manifest) (Report, error) {
	var report Report
	for i := range manifest.Samples {
		sample := &manifest.Samples[i]
		var findings []Finding
		for _, v := range e.validators {
			fs, err := v.Validate(ctx, manifest, sample)
			if err != nil {
				return Report{}, err
			}
			findings = append(findings, fs...)
		}
		report.AddRow(sample.Row, findings)
	}
	return report, nil
}

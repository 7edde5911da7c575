package domain

// Severity classifies a validation finding.
type Severity string

// Finding severities. Errors block identifier generation, warnings do not.
const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Finding is one field-scoped validation outcome for a sample.
type Finding struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// RowResult groups the findings for one manifest row.
type RowResult struct {
	Row      int       `json:"row"`
	Findings []Finding `json:"results"`
}

// Report aggregates findings across a manifest, one entry per row.
type Report struct {
	Rows []RowResult `json:"validations"`
}

// AddRow appends a row's findings to the report. Rows with no findings are
// still recorded so the caller sees every row it submitted.
func (r *Report) AddRow(row int, findings []Finding) {
	r.Rows = append(r.Rows, RowResult{Row: row, Findings: findings})
}

// Merge appends the rows of another report.
func (r *Report) Merge(other Report) {
	if len(other.Rows) == 0 {
		return
	}
	r.Rows = append(r.Rows, other.Rows...)
}

// ErrorCount returns the number of ERROR-severity findings in the report.
func (r Report) ErrorCount() int {
	count := 0
	for _, row := range r.Rows {
		for _, f := range row.Findings {
			if f.Severity == SeverityError {
				count++
			}
		}
	}
	return count
}

// HasBlocking reports whether any ERROR-severity finding is present.
func (r Report) HasBlocking() bool {
	return r.ErrorCount() > 0
}

// ValidationError is returned when blocking findings prevent an operation.
type ValidationError struct {
	Report Report
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return "manifest has blocking validation findings"
}

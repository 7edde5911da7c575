package domain

import "testing"

func TestReportErrorCount(t *testing.T) {
	var report Report
	report.AddRow(1, []Finding{
		{Field: "SPECIMEN_ID", Message: "A value must be given", Severity: SeverityError},
		{Field: "TAXON_ID", Message: "Species not known in the ToLID service", Severity: SeverityWarning},
	})
	report.AddRow(2, nil)

	if got := report.ErrorCount(); got != 1 {
		t.Fatalf("error count: got %d, want 1", got)
	}
	if !report.HasBlocking() {
		t.Fatal("report with an error should block")
	}
}

func TestReportWarningsDoNotBlock(t *testing.T) {
	var report Report
	report.AddRow(1, []Finding{
		{Field: "RACK_OR_PLATE_ID", Message: "Does not match a specific pattern", Severity: SeverityWarning},
	})
	if report.HasBlocking() {
		t.Fatal("warnings must not block")
	}
	if got := report.ErrorCount(); got != 0 {
		t.Fatalf("error count: got %d, want 0", got)
	}
}

func TestReportMerge(t *testing.T) {
	var a, b Report
	a.AddRow(1, []Finding{{Field: "A", Message: "m", Severity: SeverityError}})
	b.AddRow(2, []Finding{{Field: "B", Message: "m", Severity: SeverityError}})
	a.Merge(b)
	if len(a.Rows) != 2 {
		t.Fatalf("merged rows: %d", len(a.Rows))
	}
	a.Merge(Report{})
	if len(a.Rows) != 2 {
		t.Fatal("merging an empty report changed the row count")
	}
}

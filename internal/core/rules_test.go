package core

import (
	"context"
	"strings"
	"testing"

	"tolsubmissions/pkg/domain"
)

func runRule(t *testing.T, v domain.Validator, m *domain.Manifest, s *domain.Sample) []domain.Finding {
	t.Helper()
	findings, err := v.Validate(context.Background(), m, s)
	if err != nil {
		t.Fatalf("%s returned error: %v", v.Name(), err)
	}
	return findings
}

func findingFor(findings []domain.Finding, field string) (domain.Finding, bool) {
	for _, f := range findings {
		if f.Field == field {
			return f, true
		}
	}
	return domain.Finding{}, false
}

func TestRequiredFieldsRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)
	if findings := runRule(t, NewRequiredFieldsRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("valid sample flagged: %+v", findings)
	}

	sample.ScientificName = ""
	sample.TaxonomyID = 0
	m = manifestWith(sample)
	findings := runRule(t, NewRequiredFieldsRule(), m, &m.Samples[0])
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	for _, f := range findings {
		if f.Message != "A value must be given" || f.Severity != domain.SeverityError {
			t.Fatalf("unexpected finding: %+v", f)
		}
	}
	if _, ok := findingFor(findings, "TAXON_ID"); !ok {
		t.Fatalf("TAXON_ID not flagged: %+v", findings)
	}
}

func TestAllowedValuesRule(t *testing.T) {
	sample := validSample(1)
	sample.OrganismPart = "MUSCLE | LEG"
	m := manifestWith(sample)
	if findings := runRule(t, NewAllowedValuesRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("valid multi-value flagged: %+v", findings)
	}

	sample.Sex = "UNKNOWN"
	sample.OrganismPart = "MUSCLE | WRONG_PART"
	m = manifestWith(sample)
	findings := runRule(t, NewAllowedValuesRule(), m, &m.Samples[0])
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	f, ok := findingFor(findings, "ORGANISM_PART")
	if !ok || f.Message != "Must be an allowed value" {
		t.Fatalf("organism part finding: %+v ok=%v", f, ok)
	}
}

func TestFieldPatternsRule(t *testing.T) {
	sample := validSample(1)
	sample.Series = "12"
	sample.RackOrPlateID = "RR12345678"
	m := manifestWith(sample)
	if findings := runRule(t, NewFieldPatternsRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("valid patterns flagged: %+v", findings)
	}

	sample.Series = "one"
	sample.RackOrPlateID = "bad"
	m = manifestWith(sample)
	findings := runRule(t, NewFieldPatternsRule(), m, &m.Samples[0])
	series, ok := findingFor(findings, "SERIES")
	if !ok || series.Severity != domain.SeverityError {
		t.Fatalf("series finding: %+v ok=%v", series, ok)
	}
	rack, ok := findingFor(findings, "RACK_OR_PLATE_ID")
	if !ok || rack.Severity != domain.SeverityWarning {
		t.Fatalf("rack finding: %+v ok=%v", rack, ok)
	}
}

func TestSpecimenNamingRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)
	if findings := runRule(t, NewSpecimenNamingRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("valid specimen ID flagged: %+v", findings)
	}

	sample.SpecimenID = "WRONG123"
	m = manifestWith(sample)
	findings := runRule(t, NewSpecimenNamingRule(), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Does not match the required pattern for the GAL" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	// ERGA manifests are exempt.
	m.ProjectName = "ERGA"
	if findings := runRule(t, NewSpecimenNamingRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("ERGA manifest flagged: %+v", findings)
	}

	// Unlisted GALs are not checked.
	sample.GAL = "UNKNOWN INSTITUTE"
	m = manifestWith(sample)
	if findings := runRule(t, NewSpecimenNamingRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("unlisted GAL flagged: %+v", findings)
	}
}

func TestContainerNotBothNARule(t *testing.T) {
	sample := validSample(1)
	sample.RackOrPlateID = "NOT_PROVIDED"
	sample.TubeOrWellID = "NA"
	m := manifestWith(sample)
	findings := runRule(t, NewContainerNotBothNARule(), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Cannot be NA if RACK_OR_PLATE_ID is NA" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	m.Samples[0].RackOrPlateID = "RR12345678"
	if findings := runRule(t, NewContainerNotBothNARule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("real rack flagged: %+v", findings)
	}
}

func TestContainerUniqueRule(t *testing.T) {
	first := validSample(1)
	first.RackOrPlateID = "RR12345678"
	first.TubeOrWellID = "TU12345678"
	second := validSample(2)
	second.SpecimenID = "SAN0000101"
	second.RackOrPlateID = "RR12345678"
	second.TubeOrWellID = "TU12345678"
	m := manifestWith(first, second)

	for i := range m.Samples {
		findings := runRule(t, NewContainerUniqueRule(), m, &m.Samples[i])
		if len(findings) != 1 || findings[0].Message != "Must only be one target specimen id per rack/tube or plate/well" {
			t.Fatalf("row %d: unexpected findings %+v", i+1, findings)
		}
	}

	// A symbiont sharing the container is not a duplicate target.
	second.Symbiont = "SYMBIONT"
	m = manifestWith(first, second)
	if findings := runRule(t, NewContainerUniqueRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("target flagged alongside symbiont: %+v", findings)
	}
}

func TestOrphanedSymbiontRule(t *testing.T) {
	target := validSample(1)
	target.RackOrPlateID = "RR12345678"
	target.TubeOrWellID = "TU12345678"
	symbiont := validSample(2)
	symbiont.Symbiont = "SYMBIONT"
	symbiont.RackOrPlateID = "RR12345678"
	symbiont.TubeOrWellID = "TU12345678"
	m := manifestWith(target, symbiont)
	if findings := runRule(t, NewOrphanedSymbiontRule(), m, &m.Samples[1]); len(findings) != 0 {
		t.Fatalf("paired symbiont flagged: %+v", findings)
	}

	symbiont.TubeOrWellID = "TU99999999"
	m = manifestWith(target, symbiont)
	findings := runRule(t, NewOrphanedSymbiontRule(), m, &m.Samples[1])
	if len(findings) != 1 || findings[0].Message != "All symbionts must have a TARGET with same rack/plate and tube/well" {
		t.Fatalf("unexpected findings: %+v", findings)
	}
}

func TestTaxonConsistencyRule(t *testing.T) {
	first := validSample(1)
	second := validSample(2)
	second.TaxonomyID = 9999
	m := manifestWith(first, second)

	if findings := runRule(t, NewTaxonConsistencyRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("first use flagged: %+v", findings)
	}
	findings := runRule(t, NewTaxonConsistencyRule(), m, &m.Samples[1])
	if len(findings) != 1 || findings[0].Message != "Targets must not use the same SPECIMEN_ID with a different TAXON_ID" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	// Symbionts may reuse the specimen ID with their own taxon.
	second.Symbiont = "SYMBIONT"
	m = manifestWith(first, second)
	if findings := runRule(t, NewTaxonConsistencyRule(), m, &m.Samples[1]); len(findings) != 0 {
		t.Fatalf("symbiont flagged: %+v", findings)
	}
}

func TestBarcodingRule(t *testing.T) {
	sample := validSample(1)
	sample.TissueRemovedForBarcoding = "N"
	sample.PlateIDForBarcoding = "NOT_APPLICABLE"
	m := manifestWith(sample)
	if findings := runRule(t, NewBarcodingRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("NOT_APPLICABLE flagged: %+v", findings)
	}

	sample.PlateIDForBarcoding = "PL1"
	sample.TissueForBarcoding = "MUSCLE"
	m = manifestWith(sample)
	findings := runRule(t, NewBarcodingRule(), m, &m.Samples[0])
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	if findings[0].Message != "If TISSUE_REMOVED_FOR_BARCODING is N, other barcoding fields must be NOT_APPLICABLE" {
		t.Fatalf("unexpected message: %q", findings[0].Message)
	}

	sample.TissueRemovedForBarcoding = "Y"
	m = manifestWith(sample)
	if findings := runRule(t, NewBarcodingRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("removed-for-barcoding sample flagged: %+v", findings)
	}
}

func TestWholeOrganismUniqueRule(t *testing.T) {
	first := validSample(1)
	first.OrganismPart = "WHOLE_ORGANISM"
	second := validSample(2)
	second.OrganismPart = "WHOLE_ORGANISM"
	m := manifestWith(first, second)

	for i := range m.Samples {
		findings := runRule(t, NewWholeOrganismUniqueRule(), m, &m.Samples[i])
		if len(findings) != 1 || findings[0].Message != "WHOLE_ORGANISM can only be used once" {
			t.Fatalf("row %d: unexpected findings %+v", i+1, findings)
		}
	}
}

func TestSpeciesKnownRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)

	if findings := runRule(t, NewSpeciesKnownRule(&fakeNaming{}), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("known species flagged: %+v", findings)
	}

	notFound := &fakeNaming{speciesFn: func(int) error { return ErrNotFound }}
	findings := runRule(t, NewSpeciesKnownRule(notFound), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Severity != domain.SeverityWarning ||
		findings[0].Message != "Species not known in the ToLID service" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	failing := &fakeNaming{speciesFn: func(int) error { return StatusError{Code: 500} }}
	findings = runRule(t, NewSpeciesKnownRule(failing), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Communication failed with the ToLID service: status code 500" {
		t.Fatalf("unexpected findings: %+v", findings)
	}
}

func TestSpecimenRegistryRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)

	matching := &fakeNaming{taxonsFn: func(string) ([]int, error) { return []int{6344}, nil }}
	if findings := runRule(t, NewSpecimenRegistryRule(matching), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("matching taxon flagged: %+v", findings)
	}

	conflicting := &fakeNaming{taxonsFn: func(string) ([]int, error) { return []int{9999}, nil }}
	findings := runRule(t, NewSpecimenRegistryRule(conflicting), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Has been used before but with different taxonomy ID" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	// First use of the specimen ID passes.
	if findings := runRule(t, NewSpecimenRegistryRule(&fakeNaming{}), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("first use flagged: %+v", findings)
	}

	// Symbionts are exempt.
	sample.Symbiont = "SYMBIONT"
	m = manifestWith(sample)
	if findings := runRule(t, NewSpecimenRegistryRule(conflicting), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("symbiont flagged: %+v", findings)
	}
}

func TestENAChecklistRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)
	if findings := runRule(t, NewENAChecklistRule(), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("valid sample flagged: %+v", findings)
	}

	sample.Habitat = ""
	sample.DateOfCollection = "01-09-2020"
	sample.Lifestage = "TEENAGER"
	m = manifestWith(sample)
	findings := runRule(t, NewENAChecklistRule(), m, &m.Samples[0])

	habitat, ok := findingFor(findings, "HABITAT")
	if !ok || habitat.Message != "Must not be empty" {
		t.Fatalf("habitat finding: %+v ok=%v", habitat, ok)
	}
	date, ok := findingFor(findings, "DATE_OF_COLLECTION")
	if !ok || date.Message != "Must match specific pattern" {
		t.Fatalf("date finding: %+v ok=%v", date, ok)
	}
	lifestage, ok := findingFor(findings, "LIFESTAGE")
	if !ok || lifestage.Message != "Must be in allowed values" {
		t.Fatalf("lifestage finding: %+v ok=%v", lifestage, ok)
	}
}

func TestENASubmittableRule(t *testing.T) {
	sample := validSample(1)
	m := manifestWith(sample)

	good := &fakeTaxonomy{records: map[int]TaxonomyRecord{
		6344: {TaxID: "6344", ScientificName: "Arenicola marina", Submittable: "true"},
	}}
	if findings := runRule(t, NewENASubmittableRule(good), m, &m.Samples[0]); len(findings) != 0 {
		t.Fatalf("submittable taxon flagged: %+v", findings)
	}

	unknown := &fakeTaxonomy{}
	findings := runRule(t, NewENASubmittableRule(unknown), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Is not known at ENA" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	mismatch := &fakeTaxonomy{records: map[int]TaxonomyRecord{
		6344: {TaxID: "6344", ScientificName: "Arenicola defodiens", Submittable: "false"},
	}}
	findings = runRule(t, NewENASubmittableRule(mismatch), m, &m.Samples[0])
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	if _, ok := findingFor(findings, "TAXON_ID"); !ok {
		t.Fatalf("submittable flag not reported: %+v", findings)
	}
	name, ok := findingFor(findings, "SCIENTIFIC_NAME")
	if !ok || !strings.Contains(name.Message, "Arenicola defodiens") {
		t.Fatalf("name finding: %+v ok=%v", name, ok)
	}

	failing := &fakeTaxonomy{err: StatusError{Code: 502}}
	findings = runRule(t, NewENASubmittableRule(failing), m, &m.Samples[0])
	if len(findings) != 1 || findings[0].Message != "Communication with ENA has failed with status code 502" {
		t.Fatalf("unexpected findings: %+v", findings)
	}
}

func TestValidationEngineOrderAndAggregation(t *testing.T) {
	sample := validSample(1)
	sample.Sex = "UNKNOWN"
	m := manifestWith(sample)

	engine := NewValidationEngine(&fakeNaming{}, &fakeTaxonomy{records: map[int]TaxonomyRecord{
		6344: {ScientificName: "Arenicola marina", Submittable: "true"},
	}})
	report, err := engine.Evaluate(context.Background(), m)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected one row, got %+v", report.Rows)
	}
	if report.ErrorCount() != 1 {
		t.Fatalf("expected one error, got %d", report.ErrorCount())
	}
	if report.Rows[0].Findings[0].Field != "SEX" {
		t.Fatalf("unexpected finding: %+v", report.Rows[0].Findings[0])
	}
}

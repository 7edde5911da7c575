package ena

import (
	"testing"

	"tolsubmissions/pkg/domain"
)

func sampleForProjection() *domain.Sample {
	s := &domain.Sample{
		SpecimenID:            "SAN0000100",
		TaxonomyID:            6344,
		ScientificName:        "Arenicola marina",
		Lifestage:             "ADULT",
		Sex:                   "NOT_COLLECTED",
		OrganismPart:          "MUSCLE",
		GAL:                   "SANGER INSTITUTE",
		GALSampleID:           "SAN0000100",
		CollectedBy:           "ALEX COLLECTOR",
		CollectorAffiliation:  "THE COLLECTOR INSTITUTE",
		DateOfCollection:      "2020-09-01",
		CollectionLocation:    "UNITED KINGDOM | DARK FOREST",
		DecimalLatitude:       "50.12345678",
		DecimalLongitude:      "-1.98765432",
		Habitat:               "Woodland",
		IdentifiedBy:          "JO IDENTIFIER",
		IdentifierAffiliation: "THE IDENTIFIER INSTITUTE",
		VoucherID:             "voucher1",
	}
	return s
}

func TestAttributesProjection(t *testing.T) {
	s := sampleForProjection()
	attrs := Attributes("ToL", s)

	if attrs[0].Tag != "ENA-CHECKLIST" || attrs[0].Value != "ERC000053" {
		t.Fatalf("first attribute: %+v", attrs[0])
	}

	checks := map[string]string{
		"organism part":   "MUSCLE",
		"lifestage":       "ADULT",
		"project name":    "ToL",
		"collected by":    "ALEX COLLECTOR",
		"collection date": "2020-09-01",
		"geographic location (country and/or sea)":  "UNITED KINGDOM",
		"geographic location (region and locality)": "DARK FOREST",
		"sex": "NOT COLLECTED",
	}
	for tag, want := range checks {
		attr, ok := attrs.Find(tag)
		if !ok {
			t.Fatalf("attribute %q missing", tag)
		}
		if attr.Value != want {
			t.Fatalf("attribute %q: got %q, want %q", tag, attr.Value, want)
		}
	}

	lat, _ := attrs.Find("geographic location (latitude)")
	if lat.Units != "DD" {
		t.Fatalf("latitude units: %q", lat.Units)
	}

	if _, ok := attrs.Find("geographic location (depth)"); ok {
		t.Fatal("depth must be omitted when unset")
	}
}

func TestAttributesOptionalValues(t *testing.T) {
	s := sampleForProjection()
	s.Depth = "100"
	s.Symbiont = "SYMBIONT"
	s.SetRelationship(domain.RelationDerivedFrom, "SAMEA12345678")

	attrs := Attributes("ToL", s)

	depth, ok := attrs.Find("geographic location (depth)")
	if !ok || depth.Units != "m" || depth.Value != "100" {
		t.Fatalf("depth attribute: %+v (%v)", depth, ok)
	}
	symbiont, _ := attrs.Find("symbiont")
	if symbiont.Value != "Y" {
		t.Fatalf("symbiont flag: %q", symbiont.Value)
	}
	derived, ok := attrs.Find("sample derived from")
	if !ok || derived.Value != "SAMEA12345678" {
		t.Fatalf("sample derived from: %+v (%v)", derived, ok)
	}
	if _, ok := attrs.Find("sample same as"); ok {
		t.Fatal("sample same as must not be present")
	}
}

func TestLifestageSporeBearing(t *testing.T) {
	s := sampleForProjection()
	s.Lifestage = "SPORE_BEARING_STRUCTURE"
	attrs := Attributes("ToL", s)
	lifestage, _ := attrs.Find("lifestage")
	if lifestage.Value != "spore-bearing structure" {
		t.Fatalf("lifestage: %q", lifestage.Value)
	}
}

func TestChecklistPatterns(t *testing.T) {
	cases := []struct {
		name  string
		value string
		match bool
	}{
		{"collection date", "2020-09-01", true},
		{"collection date", "not collected", true},
		{"collection date", "yesterday", false},
		{"geographic location (latitude)", "50.12345678", true},
		{"geographic location (latitude)", "not provided", true},
		{"geographic location (latitude)", "north", false},
		{"sample derived from", "SAMEA12345678", true},
		{"sample symbiont of", "ERS123456", true},
		{"sample symbiont of", "bogus", false},
	}
	for _, tc := range cases {
		var check Check
		found := false
		for _, c := range Checklist() {
			if c.Name == tc.name {
				check, found = c, true
				break
			}
		}
		if !found {
			t.Fatalf("checklist entry %q missing", tc.name)
		}
		if got := check.Pattern.MatchString(tc.value); got != tc.match {
			t.Fatalf("%s pattern on %q: got %v, want %v", tc.name, tc.value, got, tc.match)
		}
	}
}

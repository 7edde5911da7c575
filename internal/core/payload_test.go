package core

import (
	"errors"
	"testing"

	"tolsubmissions/pkg/domain"
)

func TestManifestFromPayload(t *testing.T) {
	payload := ManifestPayload{
		STSManifestID: "sts-123",
		Samples: []map[string]interface{}{
			{
				"row":             float64(7),
				"SPECIMEN_ID":     "SAN0000100",
				"TAXON_ID":        float64(6344),
				"SCIENTIFIC_NAME": "Arenicola marina",
				"LIFESTAGE":       "ADULT",
				"COMMON_NAME":     "",
				"MY_CUSTOM_FIELD": "kept",
			},
		},
	}
	user := domain.User{Base: domain.Base{ID: "user-1"}}

	m, err := ManifestFromPayload(payload, user)
	if err != nil {
		t.Fatalf("map payload: %v", err)
	}
	if m.ProjectName != domain.DefaultProjectName {
		t.Fatalf("expected default project, got %q", m.ProjectName)
	}
	if m.STSManifestID != "sts-123" || m.CreatedBy != "user-1" {
		t.Fatalf("manifest metadata: %+v", m)
	}

	s := m.Samples[0]
	if s.Row != 7 {
		t.Fatalf("row: %d", s.Row)
	}
	if s.SpecimenID != "SAN0000100" || s.TaxonomyID != 6344 || s.ScientificName != "Arenicola marina" {
		t.Fatalf("named fields: %+v", s)
	}
	if s.CommonName != "" {
		t.Fatalf("empty optional value must stay unset, got %q", s.CommonName)
	}
	if len(s.Extra) != 1 || s.Extra[0].Name != "MY_CUSTOM_FIELD" || s.Extra[0].Value != "kept" {
		t.Fatalf("extra fields: %+v", s.Extra)
	}
}

func TestManifestFromPayloadDefaults(t *testing.T) {
	m, err := ManifestFromPayload(ManifestPayload{
		ProjectName: "ERGA",
		Samples: []map[string]interface{}{
			{"SPECIMEN_ID": "SAN0000100"},
			{"SPECIMEN_ID": "SAN0000101"},
		},
	}, domain.User{})
	if err != nil {
		t.Fatalf("map payload: %v", err)
	}
	if m.ProjectName != "ERGA" {
		t.Fatalf("project: %q", m.ProjectName)
	}
	// Rows default to payload order.
	if m.Samples[0].Row != 1 || m.Samples[1].Row != 2 {
		t.Fatalf("rows: %d, %d", m.Samples[0].Row, m.Samples[1].Row)
	}
}

func TestManifestFromPayloadPublicName(t *testing.T) {
	m, err := ManifestFromPayload(ManifestPayload{
		Samples: []map[string]interface{}{
			{"SPECIMEN_ID": "SAN0000100", "TAXON_ID": float64(32644), "public_name": "wuAreMari1"},
		},
	}, domain.User{})
	if err != nil {
		t.Fatalf("map payload: %v", err)
	}
	if m.Samples[0].ToLID != "wuAreMari1" {
		t.Fatalf("tolid: %q", m.Samples[0].ToLID)
	}
}

func TestManifestFromPayloadNumericCoercion(t *testing.T) {
	m, err := ManifestFromPayload(ManifestPayload{
		Samples: []map[string]interface{}{
			{"SPECIMEN_ID": "SAN0000100", "DECIMAL_LATITUDE": float64(50.5), "SERIES": float64(3)},
		},
	}, domain.User{})
	if err != nil {
		t.Fatalf("map payload: %v", err)
	}
	if m.Samples[0].DecimalLatitude != "50.5" {
		t.Fatalf("latitude: %q", m.Samples[0].DecimalLatitude)
	}
	if m.Samples[0].Series != "3" {
		t.Fatalf("series: %q", m.Samples[0].Series)
	}
}

func TestManifestFromPayloadRejectsUnsupportedValue(t *testing.T) {
	_, err := ManifestFromPayload(ManifestPayload{
		Samples: []map[string]interface{}{
			{"SPECIMEN_ID": []interface{}{"nope"}},
		},
	}, domain.User{})
	var payloadErr PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected PayloadError, got %v", err)
	}
	if payloadErr.Field != "SPECIMEN_ID" || payloadErr.Row != 1 {
		t.Fatalf("unexpected payload error: %+v", payloadErr)
	}
}

package core

import (
	"fmt"
	"sort"
	"strconv"

	"tolsubmissions/pkg/domain"
)

// ManifestPayload is the JSON shape of a submitted manifest. Sample rows
// are open maps: keys matching a named field are mapped explicitly, the
// rest are kept as extra fields.
type ManifestPayload struct {
	ProjectName   string                   `json:"projectName"`
	STSManifestID string                   `json:"stsManifestId"`
	Samples       []map[string]interface{} `json:"samples"`
}

// PayloadError reports a sample row value that cannot be mapped onto the
// named field it was submitted under.
type PayloadError struct {
	Row   int
	Field string
	Cause string
}

// Error implements the error interface.
func (e PayloadError) Error() string {
	return fmt.Sprintf("sample row %d, field %s: %s", e.Row, e.Field, e.Cause)
}

// ManifestFromPayload maps a submitted payload onto a manifest. Named
// fields go through the descriptor table; a "public_name" key fills the
// tolid slot (only supplied for unidentified-taxon samples); everything
// else becomes an extra field. Empty strings on optional fields are
// treated as not given.
func ManifestFromPayload(payload ManifestPayload, user domain.User) (domain.Manifest, error) {
	manifest := domain.Manifest{
		ProjectName:   domain.DefaultProjectName,
		STSManifestID: payload.STSManifestID,
		CreatedBy:     user.ID,
	}
	if payload.ProjectName != "" {
		manifest.ProjectName = payload.ProjectName
	}

	for i, raw := range payload.Samples {
		sample, err := sampleFromPayload(i+1, raw)
		if err != nil {
			return domain.Manifest{}, err
		}
		manifest.Samples = append(manifest.Samples, sample)
	}
	return manifest, nil
}

func sampleFromPayload(defaultRow int, raw map[string]interface{}) (domain.Sample, error) {
	sample := domain.Sample{Row: defaultRow}

	consumed := map[string]bool{"row": true, "public_name": true}
	if v, ok := raw["row"]; ok {
		row, err := intValue(v)
		if err != nil {
			return domain.Sample{}, PayloadError{Row: defaultRow, Field: "row", Cause: err.Error()}
		}
		sample.Row = row
	}

	for _, field := range domain.Fields() {
		consumed[field.Name] = true
		v, ok := raw[field.Name]
		if !ok || v == nil {
			continue
		}
		value, err := stringValue(v)
		if err != nil {
			return domain.Sample{}, PayloadError{Row: sample.Row, Field: field.Name, Cause: err.Error()}
		}
		if !field.Required && value == "" {
			continue
		}
		field.Set(&sample, value)
	}

	// A supplied public name is the pre-issued tolid, used for samples
	// with the unidentified placeholder taxon.
	if v, ok := raw["public_name"]; ok && v != nil {
		value, err := stringValue(v)
		if err != nil {
			return domain.Sample{}, PayloadError{Row: sample.Row, Field: "public_name", Cause: err.Error()}
		}
		sample.ToLID = value
	}

	extras := make([]string, 0)
	for name := range raw {
		if !consumed[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		v := raw[name]
		if v == nil {
			continue
		}
		value, err := stringValue(v)
		if err != nil {
			return domain.Sample{}, PayloadError{Row: sample.Row, Field: name, Cause: err.Error()}
		}
		sample.Extra = append(sample.Extra, domain.ExtraField{Name: name, Value: value})
	}
	return sample, nil
}

func stringValue(v interface{}) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10), nil
		}
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(value), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func intValue(v interface{}) (int, error) {
	switch value := v.(type) {
	case float64:
		return int(value), nil
	case string:
		return strconv.Atoi(value)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

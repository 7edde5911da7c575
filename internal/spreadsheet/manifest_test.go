package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"

	"tolsubmissions/pkg/domain"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	xlsx := excelize.NewFile()
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	for r, cells := range rows {
		for c, cell := range cells {
			xlsx.SetCellStr(sheet, axis(c, r+1), cell)
		}
	}
	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestReadManifest(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"SERIES", "SPECIMEN_ID", "TAXON_ID", "SCIENTIFIC_NAME", "ORGANISM_PART", "DATE_OF_COLLECTION"},
		{"1", "SAN0000100", "6344", "Arenicola  marina", "MUSCLE", "2020-09-01 00:00:00"},
		{"2", "SAN0000101", "6344", " Arenicola marina ", "LEG", "2020-09-02"},
	})

	manifest, err := Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(manifest.Samples) != 2 {
		t.Fatalf("samples: %d", len(manifest.Samples))
	}
	first := manifest.Samples[0]
	if first.Row != 1 || first.SpecimenID != "SAN0000100" || first.TaxonomyID != 6344 {
		t.Fatalf("first sample: %+v", first)
	}
	if first.ScientificName != "Arenicola marina" {
		t.Fatalf("whitespace not collapsed: %q", first.ScientificName)
	}
	if first.DateOfCollection != "2020-09-01" {
		t.Fatalf("date not truncated: %q", first.DateOfCollection)
	}
	second := manifest.Samples[1]
	if second.Row != 2 || second.ScientificName != "Arenicola marina" {
		t.Fatalf("second sample: %+v", second)
	}
}

func TestReadSkipsRowsWithoutSeries(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"SERIES", "SPECIMEN_ID"},
		{"1", "SAN0000100"},
		{"", "SAN0000101"},
		{"3", "SAN0000102"},
	})

	manifest, err := Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(manifest.Samples) != 2 {
		t.Fatalf("samples: %d", len(manifest.Samples))
	}
	// Row numbers reflect the sheet, not the compacted sample list.
	if manifest.Samples[1].Row != 3 || manifest.Samples[1].SpecimenID != "SAN0000102" {
		t.Fatalf("third row: %+v", manifest.Samples[1])
	}
}

func TestReadIgnoresUnknownColumns(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"SERIES", "SPECIMEN_ID", "INTERNAL_NOTES"},
		{"1", "SAN0000100", "do not import"},
	})

	manifest, err := Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(manifest.Samples) != 1 || manifest.Samples[0].SpecimenID != "SAN0000100" {
		t.Fatalf("samples: %+v", manifest.Samples)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	manifest := &domain.Manifest{Samples: []domain.Sample{{
		Row:            1,
		Series:         "1",
		SpecimenID:     "SAN0000100",
		TaxonomyID:     6344,
		ScientificName: "Arenicola marina",
		ToLID:          "wuAreMari1",
	}}}
	manifest.Samples[0].BiosampleAccession = "SAMEA1000"

	var buf bytes.Buffer
	if err := Write(manifest, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got.Samples) != 1 {
		t.Fatalf("samples: %d", len(got.Samples))
	}
	if got.Samples[0].SpecimenID != "SAN0000100" || got.Samples[0].TaxonomyID != 6344 {
		t.Fatalf("sample: %+v", got.Samples[0])
	}
}

func TestWriteIncludesIdentifierColumns(t *testing.T) {
	sample := domain.Sample{Row: 1, Series: "1", SpecimenID: "SAN0000100", ToLID: "wuAreMari1"}
	sample.BiosampleAccession = "SAMEA1000"
	sample.SetRelationship(domain.RelationSameAs, "SAMEA1000")
	manifest := &domain.Manifest{Samples: []domain.Sample{sample}}

	var buf bytes.Buffer
	if err := Write(manifest, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	xlsx, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	fieldCount := len(domain.Fields())
	if got := xlsx.GetCellValue(sheet, axis(fieldCount, 1)); got != "tolId" {
		t.Fatalf("first identifier header: %q", got)
	}
	if got := xlsx.GetCellValue(sheet, axis(fieldCount, 2)); got != "wuAreMari1" {
		t.Fatalf("tolId cell: %q", got)
	}
	if got := xlsx.GetCellValue(sheet, axis(fieldCount+1, 2)); got != "SAMEA1000" {
		t.Fatalf("sampleSameAs cell: %q", got)
	}
}

func TestAppendIdentifiers(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"SERIES", "SPECIMEN_ID"},
		{"1", "SAN0000100"},
		{"", ""},
		{"3", "SAN0000102"},
	})

	sampleA := domain.Sample{Row: 1, ToLID: "wuAreMari1"}
	sampleB := domain.Sample{Row: 3, ToLID: "wuAreMari2"}
	manifest := &domain.Manifest{Samples: []domain.Sample{sampleA, sampleB}}

	var out bytes.Buffer
	if err := AppendIdentifiers(buf, manifest, &out); err != nil {
		t.Fatalf("append: %v", err)
	}

	xlsx, err := excelize.OpenReader(&out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	// Original columns untouched, identifiers appended after them.
	if got := xlsx.GetCellValue(sheet, "B2"); got != "SAN0000100" {
		t.Fatalf("original cell: %q", got)
	}
	if got := xlsx.GetCellValue(sheet, "C1"); got != "tolId" {
		t.Fatalf("identifier header: %q", got)
	}
	if got := xlsx.GetCellValue(sheet, "C2"); got != "wuAreMari1" {
		t.Fatalf("row 2 tolId: %q", got)
	}
	if got := xlsx.GetCellValue(sheet, "C4"); got != "wuAreMari2" {
		t.Fatalf("row 4 tolId: %q", got)
	}
}

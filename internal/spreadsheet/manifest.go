// Package spreadsheet reads and writes manifest Excel workbooks. The first
// row of the active sheet is the header; data rows follow, and only rows
// with a value in the SERIES column are taken up.
package spreadsheet

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/pkg/errors"

	"tolsubmissions/pkg/domain"
)

const seriesColumn = "SERIES"

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanCell collapses internal whitespace runs to a single space and trims
// the ends. Multi-line cells pasted from other tools arrive this way.
func cleanCell(value string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

func axis(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}

// Read parses an uploaded workbook into a manifest. Sample rows are
// numbered from 1 in sheet order; rows with an empty SERIES cell are
// skipped. Trackers are rebuilt before returning.
func Read(r io.Reader) (*domain.Manifest, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	rows, err := xlsx.Rows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "read sheet")
	}

	// Header row: column index to field name.
	headers := map[int]string{}
	if rows.Next() {
		for col, cell := range rows.Columns() {
			if name := cleanCell(cell); name != "" {
				headers[col] = name
			}
		}
	}

	manifest := &domain.Manifest{}
	sheetRow := 1
	for rows.Next() {
		sheetRow++
		cells := rows.Columns()
		values := map[string]string{}
		for col, cell := range cells {
			name, ok := headers[col]
			if !ok {
				continue
			}
			values[name] = cleanCell(cell)
		}
		if values[seriesColumn] == "" {
			continue
		}

		sample := domain.Sample{Row: sheetRow - 1}
		for _, field := range domain.Fields() {
			value, ok := values[field.Name]
			if !ok || value == "" {
				continue
			}
			if field.Name == "DATE_OF_COLLECTION" {
				// Spreadsheet tools render dates with a time part.
				value = strings.SplitN(value, " ", 2)[0]
			}
			field.Set(&sample, value)
		}
		manifest.Samples = append(manifest.Samples, sample)
	}
	manifest.RebuildTrackers()
	return manifest, nil
}

// Write renders the manifest as a fresh workbook: one header row with every
// named field followed by the identifier columns, one row per sample.
func Write(m *domain.Manifest, w io.Writer) error {
	xlsx := excelize.NewFile()
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())

	col := 0
	for _, field := range domain.Fields() {
		xlsx.SetCellStr(sheet, axis(col, 1), field.Name)
		col++
	}
	identifierStart := col
	for _, id := range domain.IdentifierColumns() {
		xlsx.SetCellStr(sheet, axis(col, 1), id.Name)
		col++
	}

	for i := range m.Samples {
		sample := &m.Samples[i]
		row := i + 2
		for c, field := range domain.Fields() {
			if value := field.Get(sample); value != "" {
				xlsx.SetCellStr(sheet, axis(c, row), value)
			}
		}
		for c, id := range domain.IdentifierColumns() {
			if value := id.Get(sample); value != "" {
				xlsx.SetCellStr(sheet, axis(identifierStart+c, row), value)
			}
		}
	}
	return errors.Wrap(xlsx.Write(w), "write workbook")
}

// AppendIdentifiers rewrites an uploaded workbook with the identifier
// columns appended after the last header column. Sample rows are located by
// their recorded row number, so the original layout survives untouched.
func AppendIdentifiers(r io.Reader, m *domain.Manifest, w io.Writer) error {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return errors.Wrap(err, "open workbook")
	}
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	rows, err := xlsx.Rows(sheet)
	if err != nil {
		return errors.Wrap(err, "read sheet")
	}
	width := 0
	if rows.Next() {
		for col, cell := range rows.Columns() {
			if cleanCell(cell) != "" {
				width = col + 1
			}
		}
	}

	for c, id := range domain.IdentifierColumns() {
		xlsx.SetCellStr(sheet, axis(width+c, 1), id.Name)
	}
	for i := range m.Samples {
		sample := &m.Samples[i]
		row := sample.Row + 1
		for c, id := range domain.IdentifierColumns() {
			if value := id.Get(sample); value != "" {
				xlsx.SetCellStr(sheet, axis(width+c, row), value)
			}
		}
	}
	return errors.Wrap(xlsx.Write(w), "write workbook")
}

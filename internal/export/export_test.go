package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/records"
)

func testDocument(t *testing.T, id string) (Document, *records.Bundle) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	ds, err := cat.Get(id)
	require.NoError(t, err)

	bundle, err := datagen.Generate(datagen.Config{Seed: 7, FromYear: 2021, ToYear: 2023})
	require.NoError(t, err)
	rows, ok := bundle.Rows(id)
	require.True(t, ok)

	return Document{
		Dataset: ds,
		Table:   records.Table{DatasetID: id, Columns: ds.Columns(), Rows: rows},
	}, bundle
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"json", FormatJSON, false},
		{" xlsx ", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"parquet", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestWriteCSV(t *testing.T) {
	doc, _ := testDocument(t, catalog.LifeExpectancyID)

	var buf bytes.Buffer
	n, err := WriteCSV(&buf, doc.Table)
	require.NoError(t, err)
	assert.Equal(t, 3*34, n)

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, n+1)
	assert.Equal(t, doc.Table.Columns, lines[0])
	assert.Equal(t, "2021", lines[1][0])
	for _, line := range lines {
		assert.Len(t, line, len(doc.Table.Columns))
	}
}

func TestWriteJSON(t *testing.T) {
	doc, _ := testDocument(t, catalog.PovertyID)

	var buf bytes.Buffer
	n, err := WriteJSON(&buf, doc.Table)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, n)
	for _, col := range doc.Table.Columns {
		assert.Contains(t, rows[0], col)
	}
	assert.Equal(t, float64(2021), rows[0]["tahun"])
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteJSON(&buf, records.Table{Columns: []string{"tahun"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	doc, bundle := testDocument(t, catalog.UnemploymentID)
	res, err := analysis.Run(bundle, analysis.Request{DatasetID: catalog.UnemploymentID})
	require.NoError(t, err)
	doc.Analysis = res

	var buf bytes.Buffer
	n, err := Write(&buf, FormatXLSX, doc)
	require.NoError(t, err)
	assert.Equal(t, len(doc.Table.Rows), n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetData, SheetMetadata, SheetComposite, SheetIndicators}, f.GetSheetList())

	rows, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, rows, n+1)
	assert.Equal(t, doc.Table.Columns, rows[0])

	id, err := f.GetCellValue(SheetMetadata, "B1")
	require.NoError(t, err)
	assert.Equal(t, catalog.UnemploymentID, id)

	composite, err := f.GetRows(SheetComposite)
	require.NoError(t, err)
	require.Len(t, composite, len(res.Composite)+2)
	assert.Equal(t, "1", composite[2][0])
	assert.Equal(t, res.Composite[0].Group, composite[2][1])
}

func TestWriteXLSX_WithoutAnalysis(t *testing.T) {
	doc, _ := testDocument(t, catalog.NutritionID)

	var buf bytes.Buffer
	_, err := WriteXLSX(&buf, doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetData, SheetMetadata}, f.GetSheetList())
}

func TestWrite_UnknownFormat(t *testing.T) {
	_, err := Write(&bytes.Buffer{}, Format("pdf"), Document{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

package export

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook
const (
	SheetData       = "Data"
	SheetMetadata   = "Metadata"
	SheetComposite  = "Indeks_Komposit"
	SheetIndicators = "Ringkasan_Indikator"
)

const columnWidth = 18

// WriteXLSX writes a workbook with the rows on the data sheet, the dataset
// metadata and, when doc.Analysis is set, the composite ranking and an
// indicator summary
func WriteXLSX(w io.Writer, doc Document) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return 0, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeDataSheet(f, doc); err != nil {
		return 0, err
	}
	if err := writeMetadataSheet(f, doc); err != nil {
		return 0, err
	}
	if doc.Analysis != nil {
		if err := writeCompositeSheet(f, doc); err != nil {
			return 0, err
		}
		if err := writeIndicatorSheet(f, doc); err != nil {
			return 0, err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return len(doc.Table.Rows), nil
}

func writeDataSheet(f *excelize.File, doc Document) error {
	sw, err := f.NewStreamWriter(SheetData)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := sw.SetColWidth(1, max(len(doc.Table.Columns), 1), columnWidth); err != nil {
		return err
	}
	header := make([]interface{}, len(doc.Table.Columns))
	for i, c := range doc.Table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range doc.Table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, r.Row()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

func writeMetadataSheet(f *excelize.File, doc Document) error {
	if _, err := f.NewSheet(SheetMetadata); err != nil {
		return err
	}

	d := doc.Dataset
	rows := [][]interface{}{
		{"ID", d.ID},
		{"Judul", d.Title},
		{"Deskripsi", d.Description},
		{"Penerbit", d.Publisher},
		{"Kategori", d.Category},
		{"Cakupan", d.Coverage},
		{"Granularitas Spasial", d.SpatialGranularity},
		{"Granularitas Temporal", d.TemporalGranularity},
		{"Lisensi", d.License},
		{"Kata Kunci", strings.Join(d.Keywords, ", ")},
		{"Jumlah Baris", len(doc.Table.Rows)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetMetadata, cell, &row); err != nil {
			return err
		}
	}

	start := len(rows) + 2
	header := []interface{}{"Kolom", "Tipe", "Satuan", "Definisi"}
	cell, _ := excelize.CoordinatesToCellName(1, start)
	if err := f.SetSheetRow(SheetMetadata, cell, &header); err != nil {
		return err
	}
	for i, c := range d.Schema {
		row := []interface{}{c.Name, c.Type, c.Unit, c.Definition}
		cell, _ := excelize.CoordinatesToCellName(1, start+i+1)
		if err := f.SetSheetRow(SheetMetadata, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetMetadata, "A", "D", 24)
}

func writeCompositeSheet(f *excelize.File, doc Document) error {
	if _, err := f.NewSheet(SheetComposite); err != nil {
		return err
	}

	res := doc.Analysis
	title := fmt.Sprintf("INDEKS KOMPOSIT %s %d (%s)", strings.ToUpper(res.DatasetName), res.Year, res.Strategy)
	if err := f.SetCellValue(SheetComposite, "A1", title); err != nil {
		return err
	}

	header := []interface{}{"Peringkat", "Wilayah", "Skor", "Klaster"}
	for _, c := range res.Components {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetComposite, "A2", &header); err != nil {
		return err
	}

	for i, c := range res.Composite {
		row := []interface{}{c.Rank, c.Group, round(c.Score, 4), c.Cluster}
		for _, v := range c.Raw {
			row = append(row, round(v, 4))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(SheetComposite, cell, &row); err != nil {
			return err
		}
	}

	last, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(SheetComposite, "A", last, columnWidth)
}

func writeIndicatorSheet(f *excelize.File, doc Document) error {
	if _, err := f.NewSheet(SheetIndicators); err != nil {
		return err
	}

	header := []interface{}{"Indikator", "Nama", "Rumus", "Satuan", "Status", "Jumlah"}
	if err := f.SetSheetRow(SheetIndicators, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, ind := range doc.Analysis.Indicators {
		statuses := make([]string, 0, len(ind.Summary))
		for s := range ind.Summary {
			statuses = append(statuses, s)
		}
		slices.Sort(statuses)
		if len(statuses) == 0 {
			statuses = append(statuses, "")
		}
		for _, s := range statuses {
			values := []interface{}{ind.ID, ind.Name, ind.Formula, ind.Unit, s, ind.Summary[s]}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SheetIndicators, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	// Distribution of the composite clusters
	row++
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellValue(SheetIndicators, cell, "Distribusi Klaster"); err != nil {
		return err
	}
	clusters := make([]string, 0, len(doc.Analysis.Distribution))
	for c := range doc.Analysis.Distribution {
		clusters = append(clusters, c)
	}
	slices.Sort(clusters)
	for _, c := range clusters {
		row++
		values := []interface{}{c, doc.Analysis.Distribution[c]}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetIndicators, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetIndicators, "A", "F", columnWidth)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

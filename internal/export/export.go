// Package export renders dataset tables and analyses as downloadable files.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/records"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat parses a format name, ignoring case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Document is everything one export file can contain. Analysis is optional
// and only used by the XLSX format.
type Document struct {
	Dataset  catalog.Dataset
	Table    records.Table
	Analysis *analysis.Result
}

// Write renders doc in the given format and returns the number of data rows
// written
func Write(w io.Writer, format Format, doc Document) (int, error) {
	switch format {
	case FormatCSV:
		return WriteCSV(w, doc.Table)
	case FormatJSON:
		return WriteJSON(w, doc.Table)
	case FormatXLSX:
		return WriteXLSX(w, doc)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a header row of column names followed by one line per row
func WriteCSV(w io.Writer, t records.Table) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, v := range r.Row() {
			if j < len(line) {
				line[j] = formatCell(v)
			}
		}
		if err := cw.Write(line); err != nil {
			return i, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(t.Rows), nil
}

// WriteJSON writes a JSON array with one column-keyed object per row
func WriteJSON(w io.Writer, t records.Table) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return 0, err
	}

	for i, r := range t.Rows {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return i, err
			}
		}
		data, err := json.Marshal(rowObject(t.Columns, r))
		if err != nil {
			return i, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := bw.Write(data); err != nil {
			return i, err
		}
	}

	if _, err := bw.WriteString("]\n"); err != nil {
		return len(t.Rows), err
	}
	return len(t.Rows), bw.Flush()
}

// rowObject pairs column names with row values
func rowObject(columns []string, r records.Record) map[string]any {
	values := r.Row()
	obj := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(values) {
			obj[col] = values[i]
		}
	}
	return obj
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

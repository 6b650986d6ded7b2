// Package ui renders query results for terminals and pipelines.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/7sedam7/krafna/internal/query"
)

// Output formats.
const (
	FormatTable = "table"
	FormatTSV   = "tsv"
	FormatJSON  = "json"
)

// Write renders a result in the given format.
func Write(w io.Writer, format string, res *query.Result) error {
	switch format {
	case FormatTable:
		return writeTable(w, res)
	case FormatTSV:
		return writeTSV(w, res)
	case FormatJSON:
		return writeJSON(w, res)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeTable(w io.Writer, res *query.Result) error {
	if len(res.Rows) == 0 {
		return nil
	}
	t := NewTable(len(res.Columns))
	t.AddRow(res.Columns...)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.AsString()
		}
		t.AddRow(cells...)
	}
	_, err := io.WriteString(w, t.String())
	return err
}

// writeTSV emits a header row with dots replaced by underscores, so
// downstream tools get clean column names.
func writeTSV(w io.Writer, res *query.Result) error {
	if len(res.Rows) == 0 {
		return nil
	}
	header := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = strings.ReplaceAll(c, ".", "_")
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(header, "\t"))
	sb.WriteByte('\n')
	for _, row := range res.Rows {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(v.AsString())
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeJSON emits an array of objects keyed by the selected paths.
func writeJSON(w io.Writer, res *query.Result) error {
	out := make([]map[string]interface{}, 0, len(res.Rows))
	for _, row := range res.Rows {
		obj := make(map[string]interface{}, len(res.Columns))
		for i, col := range res.Columns {
			obj[col] = row[i].Interface()
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

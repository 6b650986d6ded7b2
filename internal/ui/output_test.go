package ui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/7sedam7/krafna/internal/query"
	"github.com/7sedam7/krafna/internal/value"
)

func sampleResult() *query.Result {
	return &query.Result{
		Columns: []string{"file.name", "priority", "done"},
		Rows: [][]value.Value{
			{value.String("a.md"), value.Number(1), value.Bool(true)},
			{value.String("longer-name.md"), value.Number(10), value.Null()},
		},
	}
}

func TestWriteTSV(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, FormatTSV, sampleResult()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if lines[0] != "file_name\tpriority\tdone" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "a.md\t1\ttrue" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "longer-name.md\t10\tNULL" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, FormatTable, sampleResult()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", sb.String())
	}
	if !strings.HasPrefix(lines[0], "file.name") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns align: "priority" starts at the same offset everywhere.
	idx := strings.Index(lines[0], "priority")
	if idx < 0 || strings.Index(lines[2], "10") != idx {
		t.Errorf("misaligned table:\n%s", sb.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, FormatJSON, sampleResult()); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded = %v", decoded)
	}
	if decoded[0]["file.name"] != "a.md" || decoded[0]["priority"] != 1.0 {
		t.Errorf("row 0 = %v", decoded[0])
	}
	if decoded[1]["done"] != nil {
		t.Errorf("null should encode as JSON null, got %v", decoded[1]["done"])
	}
}

func TestWriteEmptyResult(t *testing.T) {
	empty := &query.Result{Columns: []string{"a"}}
	for _, format := range []string{FormatTable, FormatTSV} {
		var sb strings.Builder
		if err := Write(&sb, format, empty); err != nil {
			t.Fatal(err)
		}
		if sb.String() != "" {
			t.Errorf("%s output for empty result = %q", format, sb.String())
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, "yaml", sampleResult()); err == nil {
		t.Error("expected error for unknown format")
	}
}

package cli

import (
	"errors"
	"testing"

	"github.com/7sedam7/krafna/internal/config"
	"github.com/7sedam7/krafna/internal/query"
)

var errIO = errors.New("disk unhappy")

func resetFlags() {
	selectFlag = ""
	fromFlag = ""
	includeFieldsFlag = ""
}

func TestApplyOverridesDefaultFrom(t *testing.T) {
	resetFlags()
	q, err := query.Parse(`SELECT title WHERE priority > 1`)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{DefaultFrom: `FRONTMATTER_DATA("~/notes")`}
	if err := applyOverrides(q, cfg); err != nil {
		t.Fatal(err)
	}
	if q.From == nil || q.From.Name != "FRONTMATTER_DATA" {
		t.Errorf("from = %+v", q.From)
	}
}

func TestApplyOverridesFromFlagWins(t *testing.T) {
	resetFlags()
	fromFlag = `MD_TASKS("/srv/docs")`
	q, err := query.Parse(`SELECT title FROM FRONTMATTER_DATA("/elsewhere")`)
	if err != nil {
		t.Fatal(err)
	}
	if err := applyOverrides(q, &config.Config{}); err != nil {
		t.Fatal(err)
	}
	if q.From.Name != "MD_TASKS" {
		t.Errorf("from = %+v", q.From)
	}
}

func TestApplyOverridesSelectReplace(t *testing.T) {
	resetFlags()
	selectFlag = "file.name, due"
	q, err := query.Parse(`SELECT * FROM MD_TASKS("/x")`)
	if err != nil {
		t.Fatal(err)
	}
	if err := applyOverrides(q, &config.Config{}); err != nil {
		t.Fatal(err)
	}
	if q.Wildcard || len(q.Select) != 2 {
		t.Fatalf("select = %v wildcard=%v", q.Select, q.Wildcard)
	}
	if q.Select[0][0] != "file" || q.Select[0][1] != "name" {
		t.Errorf("select[0] = %v", q.Select[0])
	}
}

func TestApplyOverridesIncludeFieldsPrepends(t *testing.T) {
	resetFlags()
	includeFieldsFlag = "file.path"
	q, err := query.Parse(`SELECT title FROM MD_TASKS("/x")`)
	if err != nil {
		t.Fatal(err)
	}
	if err := applyOverrides(q, &config.Config{}); err != nil {
		t.Fatal(err)
	}
	if len(q.Select) != 2 || q.Select[0][0] != "file" || q.Select[1][0] != "title" {
		t.Errorf("select = %v", q.Select)
	}
}

func TestApplyOverridesBadFrom(t *testing.T) {
	resetFlags()
	fromFlag = `MD_TASKS(nested("x"))`
	q, err := query.Parse(`SELECT title`)
	if err != nil {
		t.Fatal(err)
	}
	if err := applyOverrides(q, &config.Config{}); err == nil {
		t.Error("expected error for invalid FROM override")
	}
}

func TestExitCodes(t *testing.T) {
	_, lexErr := query.Parse(`SELECT 'unterminated`)
	if exitCode(lexErr) != 2 {
		t.Errorf("lex error exit = %d", exitCode(lexErr))
	}
	_, parseErr := query.Parse(`SELECT FROM`)
	if exitCode(parseErr) != 2 {
		t.Errorf("parse error exit = %d", exitCode(parseErr))
	}
	if exitCode(errIO) != 1 {
		t.Errorf("generic error exit = %d", exitCode(errIO))
	}
}

package query

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/7sedam7/krafna/internal/cache"
	"github.com/7sedam7/krafna/internal/markdown"
	"github.com/7sedam7/krafna/internal/value"
	"github.com/7sedam7/krafna/internal/vault"
)

// RowError is a row-scoped evaluation failure. The offending row is
// dropped; the query keeps running.
type RowError struct {
	File string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Result is a fully materialized query outcome.
type Result struct {
	// Columns are the projected field paths, dotted.
	Columns []string
	Rows    [][]value.Value
	// Diagnostics records rows excluded by evaluation failures.
	Diagnostics []RowError
}

// Engine executes parsed queries against a document tree.
type Engine struct {
	Cache *cache.Cache
	// Workers bounds row-production parallelism; zero means one worker
	// per CPU.
	Workers int
}

// rowBuilder turns one parsed document into this source's rows.
type rowBuilder func(doc *markdown.Document, file value.Value) []Row

// dataSources is the fixed registry of row producers, resolved by
// case-insensitive name before any row work begins.
var dataSources = map[string]rowBuilder{
	"FRONTMATTER_DATA": frontmatterRows,
	"MD_LINKS":         linkRows,
	"MD_TASKS":         taskRows,
}

// Execute runs a parsed query to completion. Syntax-level problems
// (unknown data source, bad FROM arguments) fail the whole call;
// per-row evaluation failures land in Result.Diagnostics.
func (e *Engine) Execute(q *Query, now time.Time) (*Result, error) {
	if q.From == nil {
		return nil, parseErrf(-1, "query has no FROM clause and no default is configured")
	}
	build, ok := dataSources[strings.ToUpper(q.From.Name)]
	if !ok {
		return nil, parseErrf(-1, "unknown data source %s", q.From.Name)
	}
	root, err := fromRoot(q.From)
	if err != nil {
		return nil, err
	}

	root = vault.ExpandTilde(root)
	files, err := vault.MarkdownFiles(root)
	if err != nil {
		return nil, err
	}

	ctx := NewContext(now)
	kept, diags := e.produce(ctx, q.Where, root, files, build)

	if len(q.OrderBy) > 0 {
		sortRows(kept, q.OrderBy)
	}

	res := project(q, kept)
	res.Diagnostics = diags
	return res, nil
}

// fromRoot validates the FROM argument list: exactly one string, the
// directory to search.
func fromRoot(call *Call) (string, error) {
	if len(call.Args) != 1 {
		return "", parseErrf(-1, "%s expects one directory argument, got %d", call.Name, len(call.Args))
	}
	lit, ok := call.Args[0].(*Literal)
	if !ok || lit.Val.Kind() != value.KindString {
		return "", parseErrf(-1, "%s expects a string directory argument", call.Name)
	}
	return lit.Val.AsString(), nil
}

// fileResult holds one file's surviving rows and diagnostics.
type fileResult struct {
	rows  []Row
	diags []RowError
}

// produce maps files to rows and applies WHERE, fanned out over a
// fixed worker pool. Per-file results are reassembled in enumeration
// order so output is deterministic before any explicit ORDER BY.
func (e *Engine) produce(ctx *Context, where Expr, root string, files []vault.File, build rowBuilder) ([]Row, []RowError) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]fileResult, len(files))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = e.produceFile(ctx, where, root, files[i], build)
			}
		}()
	}
	for i := range files {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	var rows []Row
	var diags []RowError
	for _, r := range results {
		rows = append(rows, r.rows...)
		diags = append(diags, r.diags...)
	}
	return rows, diags
}

func (e *Engine) produceFile(ctx *Context, where Expr, root string, f vault.File, build rowBuilder) (res fileResult) {
	fileInfo := value.Map(vault.FileInfo(f.Path))

	doc, err := e.Cache.Get(f.Path, f.Mtime, func() (*markdown.Document, error) {
		content, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		return markdown.Parse(f.Path, root, content)
	})
	if err != nil {
		// Degrade to a row that still identifies the file.
		doc = &markdown.Document{Path: f.Path, Metadata: map[string]value.Value{}}
		res.diags = append(res.diags, RowError{File: f.Path, Err: err})
	}

	for _, row := range build(doc, fileInfo) {
		if where != nil {
			v, err := ctx.Eval(where, row)
			if err != nil {
				res.diags = append(res.diags, RowError{File: f.Path, Err: err})
				continue
			}
			if !v.AsBool() {
				continue
			}
		}
		res.rows = append(res.rows, row)
	}
	return res
}

func frontmatterRows(doc *markdown.Document, file value.Value) []Row {
	row := Row{"file": file}
	for k, v := range doc.Metadata {
		row[k] = v
	}
	if doc.Title != "" {
		if _, ok := row["title"]; !ok {
			row["title"] = value.String(doc.Title)
		}
	}
	return []Row{row}
}

func linkRows(doc *markdown.Document, file value.Value) []Row {
	rows := make([]Row, 0, len(doc.Links))
	for _, l := range doc.Links {
		rows = append(rows, Row{
			"file": file,
			"ord":  value.Number(float64(l.Ord)),
			"text": value.String(l.Text),
			"url":  value.String(l.URL),
			// link mirrors url for queries written against older output.
			"link":     value.String(l.URL),
			"path":     value.String(l.Path),
			"type":     value.String(l.Kind),
			"external": value.Bool(l.External),
		})
	}
	return rows
}

func taskRows(doc *markdown.Document, file value.Value) []Row {
	rows := make([]Row, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		parent := value.Null()
		if t.Parent != "" {
			parent = value.String(t.Parent)
		}
		rows = append(rows, Row{
			"file":    file,
			"text":    value.String(t.Text),
			"checked": value.Bool(t.Checked),
			"ord":     value.String(t.Ord),
			"parent":  parent,
		})
	}
	return rows
}

// sortRows orders rows by successive keys, stable on full ties.
func sortRows(rows []Row, keys []OrderKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			a := rows[i].Get(key.Path)
			b := rows[j].Get(key.Path)
			cmp := value.SortCompare(a, b)
			if cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// project applies the SELECT list. The wildcard expands to the sorted
// union of top-level fields across all rows.
func project(q *Query, rows []Row) *Result {
	var paths [][]string
	if q.Wildcard {
		seen := map[string]bool{}
		for _, row := range rows {
			for k := range row {
				seen[k] = true
			}
		}
		cols := make([]string, 0, len(seen))
		for k := range seen {
			cols = append(cols, k)
		}
		sort.Strings(cols)
		for _, c := range cols {
			paths = append(paths, []string{c})
		}
	} else {
		paths = q.Select
	}

	res := &Result{Rows: make([][]value.Value, 0, len(rows))}
	for _, p := range paths {
		res.Columns = append(res.Columns, strings.Join(p, "."))
	}
	for _, row := range rows {
		out := make([]value.Value, len(paths))
		for i, p := range paths {
			out[i] = row.Get(p)
		}
		res.Rows = append(res.Rows, out)
	}
	return res
}

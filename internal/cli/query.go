package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/7sedam7/krafna/internal/cache"
	"github.com/7sedam7/krafna/internal/config"
	"github.com/7sedam7/krafna/internal/query"
	"github.com/7sedam7/krafna/internal/ui"
)

var (
	selectFlag        string
	fromFlag          string
	includeFieldsFlag string
	formatFlag        string
	noCacheFlag       bool
)

var queryCmd = &cobra.Command{
	Use:   "query <query-string>",
	Short: "Run a query against a directory of markdown files",
	Long: `Run a SELECT/FROM/WHERE/ORDER BY query. Data sources:

  FRONTMATTER_DATA("dir")  one row per file, from YAML frontmatter
  MD_LINKS("dir")          one row per link
  MD_TASKS("dir")          one row per checklist item

Examples:
  krafna query 'SELECT file.name, due FROM MD_TASKS("~/notes") WHERE NOT checked ORDER BY due'
  krafna query --select 'title,priority' --from 'FRONTMATTER_DATA("~/notes")' 'SELECT * WHERE priority > 1'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(args[0])
	},
}

func runQuery(text string) error {
	q, err := query.Parse(text)
	if err != nil {
		return err
	}
	if err := applyOverrides(q, cfg); err != nil {
		return err
	}

	c, err := openCache(cfg)
	if err != nil {
		return err
	}

	engine := &query.Engine{Cache: c}
	res, err := engine.Execute(q, time.Now())
	if err != nil {
		return err
	}
	for _, diag := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: row skipped: %v\n", diag)
	}

	if err := ui.Write(os.Stdout, formatFlag, res); err != nil {
		return err
	}

	if err := c.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return nil
}

// applyOverrides layers flag and config values over the parsed query:
// --select replaces the SELECT list, --from (or the configured
// default) replaces or fills the FROM clause, --include-fields
// prepends projection fields.
func applyOverrides(q *query.Query, cfg *config.Config) error {
	if selectFlag != "" {
		q.Select = nil
		q.Wildcard = false
		if strings.TrimSpace(selectFlag) == "*" {
			q.Wildcard = true
		} else {
			for _, field := range splitFields(selectFlag) {
				q.Select = append(q.Select, strings.Split(field, "."))
			}
		}
	}

	fromText := fromFlag
	if fromText == "" && q.From == nil {
		fromText = cfg.DefaultFrom
	}
	if fromText != "" {
		call, err := query.ParseFromClause(fromText)
		if err != nil {
			return fmt.Errorf("invalid FROM override: %w", err)
		}
		q.From = call
	}

	if includeFieldsFlag != "" && !q.Wildcard {
		var prepend [][]string
		for _, field := range splitFields(includeFieldsFlag) {
			prepend = append(prepend, strings.Split(field, "."))
		}
		q.Select = append(prepend, q.Select...)
	}
	return nil
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	if noCacheFlag {
		return cache.Open("", cfg.CacheCapacity)
	}
	path := cfg.CachePath
	if path == "" {
		path = cache.DefaultPath()
	}
	return cache.Open(path, cfg.CacheCapacity)
}

// exitCode maps error categories to process exit codes.
func exitCode(err error) int {
	var lexErr *query.LexError
	var parseErr *query.ParseError
	if errors.As(err, &lexErr) || errors.As(err, &parseErr) {
		return 2
	}
	return 1
}

func init() {
	queryCmd.Flags().StringVar(&selectFlag, "select", "", "replace the SELECT list (comma-separated field paths, or *)")
	queryCmd.Flags().StringVar(&fromFlag, "from", "", `replace the FROM clause, e.g. 'MD_TASKS("~/notes")'`)
	queryCmd.Flags().StringVar(&includeFieldsFlag, "include-fields", "", "prepend fields to the SELECT list")
	queryCmd.Flags().StringVar(&formatFlag, "format", ui.FormatTable, "output format: table, tsv, or json")
	queryCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "skip the persisted document cache")
	rootCmd.AddCommand(queryCmd)
}

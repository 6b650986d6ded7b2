// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/7sedam7/krafna/internal/config"
)

var (
	configPathFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "krafna",
	Short: "SQL-like queries over a directory of markdown documents",
	Long: `Krafna treats a folder of markdown files as queryable data:
frontmatter metadata, links, and checklist tasks become rows you can
filter, project, and order with a small SQL dialect.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPathFlag != "" {
			cfg, err = config.LoadFrom(configPathFlag)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI and returns the process exit code. Lex and
// parse failures exit 2, execution failures exit 1.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to config file (default ~/.config/krafna/config.toml)")
}

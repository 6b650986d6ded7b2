package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/7sedam7/krafna/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the krafna version",
	Run: func(cmd *cobra.Command, args []string) {
		version := buildinfo.Version
		if version == "" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			} else {
				version = "dev"
			}
		}
		fmt.Println("krafna", version)
		if buildinfo.Commit != "" {
			fmt.Println("commit:", buildinfo.Commit)
		}
		if buildinfo.Date != "" {
			fmt.Println("built:", buildinfo.Date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Package main is the entry point for the krafna CLI tool.
package main

import (
	"os"

	"github.com/7sedam7/krafna/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

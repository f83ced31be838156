// Package main provides the entry point for the fzsearch CLI.
package main

import (
	"os"

	"github.com/momingse/fzsearch/cmd/fzsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the entry point for the grantha CLI.
package main

import (
	"os"

	"github.com/samhita-labs/grantha/cmd/grantha/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the lookgen CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/lookgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

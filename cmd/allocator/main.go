// Package main is the entry point for the allocator CLI.
package main

import (
	"os"

	"github.com/aristath/allocator/cmd/allocator/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

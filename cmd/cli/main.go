// Package main - CLI entry point
package main

import (
	"os"

	"hydrospark/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the unigate CLI.
package main

import (
	"os"

	"unigate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/bibliotech/mlol/internal/cli"
)

func main() {
	// Cobra already prints the error; just pick the exit code.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

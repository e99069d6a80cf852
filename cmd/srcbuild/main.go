// Package main provides the entry point for the srcbuild CLI.
package main

import (
	"os"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
)

func main() {
	if err := Execute(); err != nil {
		printError(err)
		os.Exit(pipeline.ExitCode(err))
	}
}

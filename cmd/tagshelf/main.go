package main

import (
	"os"

	"github.com/runnerr0/tagshelf/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// go-flags already printed the error.
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}

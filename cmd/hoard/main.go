// Command hoard is the CLI for the local persistent key-value cache.
package main

import (
	"os"

	"github.com/rshade/hoard/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}

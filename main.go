// Command labpack builds and stages the JupyterLab renderer extensions
// shipped by the jupyterlab-renderers distribution.
package main

import (
	"os"

	"github.com/jupyterlab/labpack/internal/cli"
)

// Overridden with -ldflags "-X main.version=..." by release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if cli.Execute(version, commit, date) != nil {
		os.Exit(1)
	}
}

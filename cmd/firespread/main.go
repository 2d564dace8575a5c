package main

import (
	"os"

	"github.com/pyrelab/firespread/internal/cmd"
)

// Build-time variables, injected via -ldflags.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	os.Exit(cmd.Execute())
}

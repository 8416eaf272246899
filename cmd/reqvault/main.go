// reqvault CLI - capture, store, query and replay inbound HTTP requests.
package main

import (
	"os"

	"github.com/reqvault/reqvault/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	info := cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
	if err := cli.Execute(info); err != nil {
		os.Exit(1)
	}
}

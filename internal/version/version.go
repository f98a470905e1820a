package version

import (
	_ "embed"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Build-time variables set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Version returns the current pgdelta version.
func Version() string {
	return strings.TrimSpace(versionFile)
}

// Platform returns the OS/architecture combination.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

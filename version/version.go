// Package version holds the build version information. The values are set at
// build time via ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of this build.
	Version = "dev"
	// GitCommit is the git commit hash of this build.
	GitCommit = "none"
	// BuildDate is the date of this build.
	BuildDate = "unknown"
	// FullVersion combines the values above.
	FullVersion = fmt.Sprintf("%s (%s) %s", Version, GitCommit, BuildDate)
)

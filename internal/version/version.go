// Package version exposes the build metadata the tutor binary logs at
// startup. Release builds override these via
// -ldflags "-X github.com/lessonlab/tutor/internal/version.Version=...".
package version

//nolint:revive // overwritten at link time, not constants
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

package version

import "fmt"

// Build metadata, overridden at link time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the full version line shown by the version command.
func String() string {
	return fmt.Sprintf("reserveja %s (commit %s, built %s)", Version, Commit, Date)
}

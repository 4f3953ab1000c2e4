package version

import "fmt"

// Build metadata of alarmd and alarmctl. Release builds set these through
// -ldflags "-X github.com/oshokin/alarm-clock/internal/version.Version=...".
var (
	// Version is the release of the alarm clock.
	Version = "0.1.0"
	// Commit is the short git SHA, or "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release alone, as shown by --version.
func Short() string {
	return Version
}

// Full returns the release with its commit and build time.
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}

// UserAgent names a program of this build on the control API, e.g. "alarmctl/0.1.0".
func UserAgent(program string) string {
	return program + "/" + Version
}

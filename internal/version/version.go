package version

import "fmt"

// SDKVersion is the descriptor schema tag stamped into every mod.json.
// The host refuses packages whose tag it does not understand, so it only
// changes together with the host SDK.
const SDKVersion = "1.0.0-alpha.1"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and the SDK tag.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s, sdk: %s", Version, Commit, BuildTime, SDKVersion)
}

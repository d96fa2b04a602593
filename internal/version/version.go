// Package version holds build metadata, overridden via ldflags at release.
package version

var (
	Version = "dev"
	Commit  = "unknown"
)

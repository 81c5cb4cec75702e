// Package version holds the xnav build identity.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at build time:
// go build -ldflags "-X xnav/internal/version.Version=0.3.0 -X xnav/internal/version.Commit=abc123"
var (
	// Version is the semantic version of xnav
	Version = "0.3.0"

	// Commit is the git commit hash
	Commit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

func init() {
	if Commit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		}
	}
}

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns multi-line version details for `xnav version --verbose`.
func Full() string {
	return fmt.Sprintf("xnav version %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

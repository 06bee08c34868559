// Package version holds build metadata injected with -ldflags, e.g.
//
//	-X github.com/TwigBush/roleguard/internal/version.Version=v0.3.0
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (injected via ldflags at build time)
	Version = "dev"

	// GitCommit is the git commit hash (injected via ldflags)
	GitCommit = "none"

	// BuildDate is the build timestamp (injected via ldflags)
	BuildDate = "unknown"
)

// Info is what /version serves.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

func String() string {
	return fmt.Sprintf("roleguard %s", Version)
}

func Verbose() string {
	return fmt.Sprintf("roleguard %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}

// UserAgent identifies roleguard on outbound calls to grant backends.
func UserAgent() string {
	return "roleguard/" + Version
}

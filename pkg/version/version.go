package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/cbodonnell/minimmo/pkg/version.Version=... -X ...Commit=..."
var (
	Version string
	Commit  string
)

// Get returns the build version, falling back to module build info for `go install` builds.
func Get() string {
	v := coalesce(Version, moduleVersion(), "dev")
	if Commit == "" {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, Commit)
}

func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

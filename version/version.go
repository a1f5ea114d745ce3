// Package version reports build information stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

// These variables are populated by the Go linker during the build process.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info holds all the versioning information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns a struct populated with the version information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent identifies the client in daemon requests.
func UserAgent() string {
	return "places/" + Version
}

func (i Info) String() string {
	return fmt.Sprintf(
		"places %s\n  Commit:     %s\n  Built:      %s\n  Go:         %s\n  Platform:   %s",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform,
	)
}

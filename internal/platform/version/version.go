// Package version carries the build identity stamped into the binary.
// Reddit asks script clients for a descriptive user agent, so the same
// values feed both the API descriptor and the /version endpoint.
package version

import (
	"fmt"
	"runtime"
)

// Injected via ldflags at release time
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the payload served by the operational /version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// UserAgent renders the reddit API descriptor for this build, in the
// platform:name:version (by /u/operator) form the API guidelines want.
func UserAgent(operator string) string {
	return fmt.Sprintf("linux:NothingTechBot:%s (by /u/%s)", Version, operator)
}

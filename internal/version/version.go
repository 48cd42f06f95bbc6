/*
Package version reports the speakeasy build.

Values are injected with ldflags, for example:

	go build -ldflags "-X github.com/khanglvm/speakeasy/internal/version.Version=v0.2.0"

An unstamped binary reports itself as a "dev" build.
*/
package version

import "runtime"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short git hash.
	Commit = "none"
	// Date is the UTC build date.
	Date = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// Get returns build information for the running binary.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
}

// String formats the build for --version output.
func (i Info) String() string {
	if i.Version == "dev" {
		return "dev (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}

// Package versions provides build and version information for the Pyxis MCP server.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const unknownStr = "unknown"

// Set at build time with -ldflags "-X github.com/stacklok/pyxis-mcp-server/internal/versions.Version=..."
var (
	// Version is the released version, "dev" for local builds
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = unknownStr
	// BuildDate is the RFC3339 build time
	BuildDate = unknownStr
)

// VersionInfo is printed by the version command and reported to MCP clients
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information
func GetVersionInfo() VersionInfo {
	return getVersionInfoWithValues(Version, Commit, BuildDate)
}

// UserAgent returns the User-Agent sent to upstream APIs, e.g. "pyxis-mcp-server/0.3.1".
func UserAgent() string {
	return "pyxis-mcp-server/" + GetVersionInfo().Version
}

func getVersionInfoWithValues(version, commit, buildDate string) VersionInfo {
	// go build stamps VCS details into local builds
	if strings.HasPrefix(version, "dev") {
		revision, modified := vcsSettings()
		if commit == unknownStr && revision != "" {
			commit = revision
		}
		if buildDate == unknownStr && modified != "" {
			buildDate = modified
		}
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.Format("2006-01-02 15:04:05 MST")
	}

	if version == "dev" && commit != unknownStr {
		version = fmt.Sprintf("build-%.8s", commit)
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func vcsSettings() (revision, modified string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			modified = setting.Value
		}
	}
	return revision, modified
}

// Package version reports the build of the running binary. Values are set at
// link time with -ldflags and fall back to the module build information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// These variables are set at build time using -ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Dirty     bool      `json:"dirty"`
	Release   bool      `json:"release"`
}

// Get collects build information.
func Get() Info {
	return fromBuildInfo(debug.ReadBuildInfo())
}

func fromBuildInfo(bi *debug.BuildInfo, ok bool) Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if ok {
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}

		if info.GitCommit == "" || info.GitCommit == "unknown" {
			if rev, found := settings["vcs.revision"]; found {
				info.GitCommit = rev
			}
		}
		info.Dirty = settings["vcs.modified"] == "true"

		if info.Version == "" || info.Version == "dev" {
			switch {
			case bi.Main.Version != "" && bi.Main.Version != "(devel)":
				info.Version = bi.Main.Version
			case len(info.GitCommit) >= 7 && info.GitCommit != "unknown":
				info.Version = "dev-" + info.GitCommit[:7]
			default:
				info.Version = "dev"
			}
		}
	}

	info.Release = info.Version != "dev" && !strings.HasPrefix(info.Version, "dev-")
	return info
}

// Short returns the version with the abbreviated commit when known.
func (i Info) Short() string {
	if i.GitCommit == "unknown" || len(i.GitCommit) < 7 || strings.HasPrefix(i.Version, "dev-") {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit[:7])
}

// parseTime parses an ISO 8601 time string, returns zero time on error
func parseTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

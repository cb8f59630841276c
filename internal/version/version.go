// Package version reports build metadata injected via -ldflags -X.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time.
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const shortCommitLen = 7

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
	}
}

// String is the multi-line form printed by -version.
func (i Info) String() string {
	return fmt.Sprintf("Pogoda v%s\nCommit: %s\nBuilt: %s\nGo: %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}

// Short renders "v<version> (<commit>)" with the commit cut to 7 characters.
func (i Info) Short() string {
	commit := i.GitCommit
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return fmt.Sprintf("v%s (%s)", i.Version, commit)
}

// UserAgent identifies outgoing weather API requests.
func (i Info) UserAgent() string {
	return fmt.Sprintf("pogoda/%s (+%s)", i.Version, i.GoVersion)
}

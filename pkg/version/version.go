package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/tectrixdev/unplayit/pkg/version.Tag=..."
var (
	Tag       = "v0.0.0-dev"
	GitCommit = "HEAD"
)

type Version struct {
	Tag       string `json:"tag"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

func Get() Version {
	return Version{
		Tag:       Tag,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%s (%s)", v.Tag, v.GitCommit)
}

// pkg/version/version.go

package version

import (
	"fmt"
	"runtime"
)

var (
	version      = "0.2.0-dev"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns `VERSION (REVISIONDATE REVISION)`, filled in at release time.
func Version() string {
	return fmt.Sprintf("%v (%v %v)", version, revisionDate, revision)
}

// Banner is the one-line header printed before a benchmark report.
func Banner() string {
	return fmt.Sprintf("arraysum %s %s/%s %s, %d CPUs",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(), runtime.NumCPU())
}

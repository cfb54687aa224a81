// Package version carries build metadata set through -ldflags.
package version

import "fmt"

var (
	// Version is the release version of the cluster3d tools.
	Version = "dev"
	// GitSHA is the git commit SHA.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("cluster3d %s (%s, built %s)", Version, GitSHA, BuildTime)
}

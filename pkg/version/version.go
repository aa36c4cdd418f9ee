// Package version holds build version information, injected at link time.
package version

import "fmt"

// Set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/prefixflow/prefixflow/pkg/version.Version=v0.3.0 \
//	                   -X github.com/prefixflow/prefixflow/pkg/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

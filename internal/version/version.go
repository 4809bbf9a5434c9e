// Package version exposes build metadata for the curator binary and SDK.
// Values are overridden at link time:
//
//	go build -ldflags "-X github.com/kailas-cloud/curator/internal/version.Version=v1.2.0"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

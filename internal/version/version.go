// Package version exposes the build stamp embedded at build time. The
// VERSION and COMMIT files are maintained by the release tooling.
package version

import (
	_ "embed"
	"strings"
)

//go:embed COMMIT
var commit string

//go:embed VERSION
var number string

// Commit returns the git commit the build was cut from.
func Commit() string {
	return strings.TrimSpace(commit)
}

// Number returns the release version.
func Number() string {
	return strings.TrimSpace(number)
}

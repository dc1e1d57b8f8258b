// SPDX-License-Identifier: MIT
//
// Package build carries build metadata embedded at compile time via
// -ldflags: application name, build timestamp, Git commit and semantic
// version. The CLI uses it for its name, description and --version.
package build

import "fmt"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables populated by -ldflags during compilation.
// Development builds fall back to the defaults below.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "tuner",
		Description: "Real-time instrument tuner",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. Missing flags keep their development defaults, so
// `go run .` works without a build script.
func Initialize() error {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
	return nil
}

// GetBuildFlags returns the current build information. Call Initialize
// first so ldflags values are applied.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders a one-line build summary for logs.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

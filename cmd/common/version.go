// Package common holds the wiring and build metadata shared by the
// almanac binaries.
package common

import (
	"fmt"
	"runtime"
)

const (
	ProjectName    = "Almanac"
	ProjectVersion = "1.0.0"
)

// Overridden at build time via -ldflags.
var (
	BuildCommit = "dev"
	BuildDate   = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns complete version and build information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Name:      ProjectName,
		Version:   ProjectVersion,
		Commit:    BuildCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion writes the version banner for one of the binaries.
func PrintVersion(appName string) {
	info := GetVersionInfo()
	fmt.Printf("%s v%s\n", appName, info.Version)
	fmt.Printf("Build: %s (%s)\n", info.Commit, info.BuildDate)
	fmt.Printf("Go: %s (%s)\n", info.GoVersion, info.Platform)
}

// IsDevBuild reports whether the binary was built without release flags.
func IsDevBuild() bool {
	return BuildCommit == "dev"
}

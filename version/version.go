// Package version holds the build version, set with
// -ldflags "-X github.com/battlesnakeio/gridsnake/version.Version=...".
package version

// Version is the release version of gridsnake.
var Version = "dev"

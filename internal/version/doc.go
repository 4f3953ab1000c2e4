// Package version holds the build metadata of alarmd and alarmctl.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at release time.
package version

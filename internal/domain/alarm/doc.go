// Package alarm contains core domain types for the alarm clock.
//
// It defines Entry (one scheduled alarm), Playback (the state of the single
// audio channel) and Status (a snapshot of the daemon), together with helpers
// to parse and format trigger moments and the validation errors shared by
// every layer.
package alarm

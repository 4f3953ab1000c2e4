// Package daemon runs alarmd: it owns the alarm collection, arms a timer for
// every active alarm, rings the player when one is due and serves the control
// API that alarmctl talks to.
//
// All mutations are serialized by one lock. A change is saved first and only
// then applied in memory, so a failed save leaves both the file and the
// running timers as they were.
package daemon

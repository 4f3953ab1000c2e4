// Package player loops the alarm clip until it is stopped.
//
// Player owns the single audio channel: Play replaces whatever is playing,
// Stop is idempotent. The sound itself comes from a Backend; CommandBackend
// drives an external audio tool picked per operating system.
package player

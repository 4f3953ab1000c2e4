// Package scheduler arms one-shot timers for active alarm entries.
//
// Each timer is a cancellable handle tied to the entry id. Rearm cancels
// everything that is outstanding before arming again, so an unchanged entry
// never ends up with two timers and a deleted or disabled entry never fires.
package scheduler

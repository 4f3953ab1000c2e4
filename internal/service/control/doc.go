// Package control implements alarmctl: it talks to the alarm daemon and
// renders alarms, the player and the clock for a terminal.
package control

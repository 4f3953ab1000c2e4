// Package config defines the settings shared by alarmd and alarmctl and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the control API address, the alarms file, the sound clip and
// the optional external player command.
package config

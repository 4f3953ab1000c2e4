// Package alarms implements persistence for the alarm entry collection.
//
// The FileRepository stores the whole collection as an indented JSON array on
// an afero filesystem and exposes a Repository interface that the daemon
// depends on. Every save replaces the file contents.
package alarms

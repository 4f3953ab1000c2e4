// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The daemon, the scheduler timers and the sound player all accept a context
// and extract the logger from it, so every line carries the component name
// and, where it matters, the alarm entry it is about.
package logger

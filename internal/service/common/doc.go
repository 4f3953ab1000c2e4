// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the alarm clock control API with
// per-call timeouts, returning domain types so callers never touch the wire
// messages.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

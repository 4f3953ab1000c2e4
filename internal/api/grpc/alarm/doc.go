// Package alarm implements the gRPC transport for the alarm clock daemon.
//
// The service descriptor is written by hand and every message is a protobuf
// well-known type (Struct, StringValue, Empty), so clients and the server
// share the conversion helpers in this package instead of generated stubs.
package alarm

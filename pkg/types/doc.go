// Package types defines shared Go types used by both the modeler and server.
// These are the canonical in-memory representations of sensor samples,
// scenario runs and sweeps. The same structs travel over the wire as JSON
// (see pkg/wire), so field tags here are part of the transport contract.
package types

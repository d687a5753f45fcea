// Package shipper publishes sweeps to firewatch-server over gRPC
// (firewatch.v1.SweepService/Publish, see pkg/wire).
//
// Two modes are offered:
//
//   - Ship + Run for long-lived modelers (watch mode, interval re-runs).
//     Ship is non-blocking and places the sweep in a bounded channel; when it
//     is full the oldest sweep is evicted so the latest result always
//     survives. Run drains the channel, reconnecting with truncated
//     exponential backoff (1s→60s, ±25% jitter).
//   - Send for one-shot runs: dial, publish once, close.
//
// Permanent gRPC errors (InvalidArgument, Unauthenticated, PermissionDenied)
// discard the sweep rather than retrying. When server_auth.mode is apikey the
// key travels as gRPC metadata under server_auth.header.
//
// The dialFn field is injectable for tests.
package shipper

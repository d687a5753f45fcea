// Package receiver implements wire.SweepServiceServer, the gRPC endpoint
// modelers publish sweeps to.
//
// Publish rejects a sweep without a site_id or without reports with
// codes.InvalidArgument. Accepted sweeps replace the site's previous sweep in
// the store, are evaluated against the alert rules and update the Prometheus
// gauges, and then wake the WebSocket hub. Authentication runs before Publish
// in the server interceptor (package auth).
package receiver

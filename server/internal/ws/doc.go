// Package ws streams site snapshots to dashboard clients over WebSocket.
//
// New(store, interval) creates a Hub. Run(ctx) broadcasts on every tick and
// whenever Notify is called after a new sweep lands, then closes every client
// once ctx is cancelled. ServeHTTP upgrades a request, sends the current
// snapshot straight away and keeps the client subscribed.
//
// Every frame has the same envelope:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// All origins are accepted; restrict them at the reverse proxy. The server
// mounts the hub at /ws.
package ws

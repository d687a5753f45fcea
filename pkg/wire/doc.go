// Package wire declares the gRPC contract between firewatch-modeler and
// firewatch-server.
//
// The service is a single unary RPC:
//
//	firewatch.v1.SweepService/Publish(types.Sweep) returns (PublishResponse)
//
// Messages are the plain Go records from pkg/types, carried with a JSON codec
// registered under the content-subtype "json". Clients must select it with
// CallContentSubtype (Dial does this); the server resolves the codec from the
// request's content-type automatically.
package wire

// Package auth guards the sweep publishing endpoint of firewatch-server.
//
// Interceptor(cfg) builds a gRPC UnaryServerInterceptor from the server's
// auth block. In apikey mode it requires the configured metadata header to
// carry the expected key and answers codes.Unauthenticated otherwise. Mode
// "none", or apikey mode with an empty key, lets every call through.
package auth

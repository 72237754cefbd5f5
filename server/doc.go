// Package server exposes the search service over HTTP.
//
// Two transports share the same routes: the default Echo server handles
// requests concurrently, and SerialServer accepts one connection at a time
// for environments that require strictly serialized request handling.
package server

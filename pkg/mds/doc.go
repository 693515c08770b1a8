// Package mds provides a client for the MDS bulk-extract API.
//
// The API exposes a single paginated endpoint. The first page is requested
// with a resumption token as a query parameter; every following page is
// fetched via the fully-formed next_url returned by the server, never
// reconstructed by the client. Records are returned as opaque JSON values
// and are passed through untouched.
//
// The client makes exactly one attempt per request. Callers that want retry
// behavior can wrap the Client behind their own implementation of the
// consuming interface.
package mds

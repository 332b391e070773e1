// Package transport frames requests to and responses from the remote query
// service over an already-established byte stream.
//
// Requests are single newline-terminated text lines. Responses are
// msgpack-encoded values: either the tag string "graph" followed by exactly
// one graph snapshot, or any other string, which is a terminal message. The
// Channel turns those two shapes into a Response envelope so callers never
// compare tags themselves.
//
// The framing has no request identifiers, so a Channel is strictly
// stop-and-wait: one Send, then one Receive. It is not safe for concurrent
// use.
package transport

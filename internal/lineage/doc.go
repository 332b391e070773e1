// Package lineage resolves a lineage query whose origin is a bound graph
// rather than a single store identifier.
//
// The Resolver issues one remote lineage request per vertex of the source
// graph, using each vertex's store-identifier annotation, and unions every
// graph it gets back. Terminal messages are handed to the caller and the
// fan-out continues with the next vertex.
//
// By default requests go out one at a time on the session channel. With a
// parallelism above one and a Dialer, the Resolver opens that many extra
// channels and spreads the vertices over them; each channel still runs
// stop-and-wait. Messages are then delivered in vertex order once every
// request has completed.
package lineage

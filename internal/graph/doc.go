// Package graph provides the provenance graph that query results are bound
// to: vertices and edges carrying string annotations, plus the local
// composition operations the client runs against bound results.
//
// # Identity
//
// A vertex is identified by a hash of its annotations, an edge by the hash
// of its endpoints and annotations. Two graphs that contain the same
// annotated elements therefore contain the same IDs, which is what makes
// Union a set union: commutative, associative, with Empty() as identity.
//
// # Direction
//
// Edges point from child to parent, following the provenance convention
// that a process which used an artifact is the child of that artifact.
// Ancestors are reached by following edges forward, descendants by following
// them backward.
//
// # Store identifiers
//
// GetPaths and GetLineage address vertices by their store-native integer
// identifier, read from the annotation configured with WithIdentifierKey.
//
// # Immutability
//
// A Memory graph is built once (AddVertex, AddEdge, FromSnapshot) and is
// treated as read-only afterwards. Every query operation returns a new graph.
package graph

// Package query parses client query lines and compiles them into execution
// plans.
//
// A line has the shape
//
//	[result =] [target.] method(arguments)[;]
//
// where result and target are alphanumeric names. Parse produces one of seven
// node types (VerticesQuery, EdgesQuery, PathsQuery, LineageQuery,
// PrintQuery, ChildrenQuery, ParentsQuery). Compile decides, against the
// names currently bound in the session, whether the node becomes a remote
// request, a local composition, a per-vertex lineage fan-out, a print, or a
// two-step expansion.
package query

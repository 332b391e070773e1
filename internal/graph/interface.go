package graph

// Graph is the interface the client uses to inspect and compose bound
// query results.
type Graph interface {
	// Vertices returns every vertex, ordered by ID.
	Vertices() []Vertex
	// Edges returns every edge, ordered by ID.
	Edges() []Edge

	// GetVertices returns the vertices matching a filter expression together
	// with the edges among them.
	GetVertices(expression string) (Graph, error)
	// GetEdges returns the edges matching a filter expression together with
	// their endpoints.
	GetEdges(expression string) (Graph, error)
	// GetPaths returns every vertex and edge on a child-to-parent path from
	// src to dst of at most maxLength edges.
	GetPaths(src, dst, maxLength int) (Graph, error)
	// GetLineage walks up to depth hops from the vertex with store
	// identifier id. Vertices matching terminating are kept but not
	// expanded; "" or "null" disables early termination.
	GetLineage(id, depth int, direction Direction, terminating string) (Graph, error)

	// Export writes the graph to path in Graphviz DOT format.
	Export(path string) error
}

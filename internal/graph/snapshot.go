package graph

import "fmt"

// Snapshot is the serialized form of a graph exchanged with the query
// service. Edges reference vertices by their position in Vertices.
type Snapshot struct {
	Vertices []map[string]string `msgpack:"vertices"`
	Edges    []SnapshotEdge      `msgpack:"edges"`
}

// SnapshotEdge is an edge in a Snapshot.
type SnapshotEdge struct {
	Child       int               `msgpack:"child"`
	Parent      int               `msgpack:"parent"`
	Annotations map[string]string `msgpack:"annotations"`
}

// SnapshotOf converts any graph into its serialized form.
func SnapshotOf(g Graph) Snapshot {
	vertices := g.Vertices()
	index := make(map[string]int, len(vertices))
	snap := Snapshot{Vertices: make([]map[string]string, len(vertices))}
	for i, v := range vertices {
		index[v.ID()] = i
		snap.Vertices[i] = copyAnnotations(v.Annotations)
	}
	for _, e := range g.Edges() {
		snap.Edges = append(snap.Edges, SnapshotEdge{
			Child:       index[e.Child],
			Parent:      index[e.Parent],
			Annotations: copyAnnotations(e.Annotations),
		})
	}
	return snap
}

// FromSnapshot rebuilds a graph from its serialized form.
func FromSnapshot(snap Snapshot, opts ...Option) (*Memory, error) {
	m := New(opts...)
	ids := make([]string, len(snap.Vertices))
	for i, annotations := range snap.Vertices {
		ids[i] = m.AddVertex(Vertex{Annotations: annotations})
	}
	for i, e := range snap.Edges {
		if e.Child < 0 || e.Child >= len(ids) || e.Parent < 0 || e.Parent >= len(ids) {
			return nil, fmt.Errorf("snapshot edge %d references vertex out of range (child=%d parent=%d vertices=%d)",
				i, e.Child, e.Parent, len(ids))
		}
		m.addEdge(Edge{Child: ids[e.Child], Parent: ids[e.Parent], Annotations: e.Annotations})
	}
	return m, nil
}

package graph

import (
	"fmt"
	"sort"
	"strconv"
)

// Memory is the in-memory Graph implementation.
type Memory struct {
	idKey    string
	vertices map[string]Vertex
	edges    map[string]Edge
}

// Option configures a Memory graph.
type Option func(*Memory)

// WithIdentifierKey sets the annotation used to resolve store identifiers.
func WithIdentifierKey(key string) Option {
	return func(m *Memory) {
		if key != "" {
			m.idKey = key
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Memory {
	m := &Memory{
		idKey:    DefaultIdentifierKey,
		vertices: make(map[string]Vertex),
		edges:    make(map[string]Edge),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Empty returns the identity element of Union.
func Empty() Graph {
	return New()
}

// IdentifierKey returns the annotation used to resolve store identifiers.
func (m *Memory) IdentifierKey() string {
	return m.idKey
}

// AddVertex inserts v and returns its ID. Adding an existing vertex is a no-op.
func (m *Memory) AddVertex(v Vertex) string {
	id := v.ID()
	if _, ok := m.vertices[id]; !ok {
		m.vertices[id] = NewVertex(v.Annotations)
	}
	return id
}

// AddEdge inserts e. Both endpoints must already be present.
func (m *Memory) AddEdge(e Edge) error {
	if _, ok := m.vertices[e.Child]; !ok {
		return fmt.Errorf("edge child vertex %s not found in graph", e.Child)
	}
	if _, ok := m.vertices[e.Parent]; !ok {
		return fmt.Errorf("edge parent vertex %s not found in graph", e.Parent)
	}
	m.addEdge(e)
	return nil
}

func (m *Memory) addEdge(e Edge) {
	id := e.ID()
	if _, ok := m.edges[id]; !ok {
		m.edges[id] = Edge{Child: e.Child, Parent: e.Parent, Annotations: copyAnnotations(e.Annotations)}
	}
}

// Vertices returns every vertex, ordered by ID.
func (m *Memory) Vertices() []Vertex {
	ids := make([]string, 0, len(m.vertices))
	for id := range m.vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Vertex, len(ids))
	for i, id := range ids {
		out[i] = m.vertices[id]
	}
	return out
}

// Edges returns every edge, ordered by ID.
func (m *Memory) Edges() []Edge {
	ids := make([]string, 0, len(m.edges))
	for id := range m.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = m.edges[id]
	}
	return out
}

// vertexByStoreID resolves a store identifier to a vertex ID.
func (m *Memory) vertexByStoreID(id int) (string, error) {
	want := strconv.Itoa(id)
	for vid, v := range m.vertices {
		if v.Annotation(m.idKey) == want {
			return vid, nil
		}
	}
	return "", fmt.Errorf("%w: no vertex with %s=%d", ErrVertexNotFound, m.idKey, id)
}

// derive returns an empty graph sharing m's configuration.
func (m *Memory) derive() *Memory {
	return New(WithIdentifierKey(m.idKey))
}

// Union returns a new graph holding every vertex and edge of a and b.
func Union(a, b Graph) Graph {
	key := DefaultIdentifierKey
	if m, ok := a.(*Memory); ok {
		key = m.idKey
	} else if m, ok := b.(*Memory); ok {
		key = m.idKey
	}
	out := New(WithIdentifierKey(key))
	for _, g := range []Graph{a, b} {
		if g == nil {
			continue
		}
		for _, v := range g.Vertices() {
			out.AddVertex(v)
		}
		for _, e := range g.Edges() {
			out.addEdge(e)
		}
	}
	return out
}

// Equal reports whether a and b contain the same vertices and edges.
func Equal(a, b Graph) bool {
	av, bv := a.Vertices(), b.Vertices()
	ae, be := a.Edges(), b.Edges()
	if len(av) != len(bv) || len(ae) != len(be) {
		return false
	}
	for i := range av {
		if av[i].ID() != bv[i].ID() {
			return false
		}
	}
	for i := range ae {
		if ae[i].ID() != be[i].ID() {
			return false
		}
	}
	return true
}

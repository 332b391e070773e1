package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultIdentifierKey is the annotation holding a vertex's store identifier
// when no other key is configured.
const DefaultIdentifierKey = "storage_identifier"

var (
	// ErrUnknownDirection is returned by ParseDirection.
	ErrUnknownDirection = errors.New("unknown lineage direction")
	// ErrVertexNotFound is returned when a store identifier does not resolve
	// to a vertex of the graph.
	ErrVertexNotFound = errors.New("vertex not found")
)

// Vertex is a provenance element (process, artifact, agent).
type Vertex struct {
	Annotations map[string]string
}

// NewVertex copies annotations into a new Vertex.
func NewVertex(annotations map[string]string) Vertex {
	return Vertex{Annotations: copyAnnotations(annotations)}
}

// Annotation returns the value stored under key, or "".
func (v Vertex) Annotation(key string) string {
	return v.Annotations[key]
}

// ID returns the content hash identifying the vertex.
func (v Vertex) ID() string {
	d := xxhash.New()
	writeAnnotations(d, v.Annotations)
	return fmt.Sprintf("%016x", d.Sum64())
}

// Edge is a provenance relationship from a child vertex to a parent vertex.
type Edge struct {
	Child       string
	Parent      string
	Annotations map[string]string
}

// NewEdge builds an edge between two vertices.
func NewEdge(child, parent Vertex, annotations map[string]string) Edge {
	return Edge{Child: child.ID(), Parent: parent.ID(), Annotations: copyAnnotations(annotations)}
}

// Annotation returns the value stored under key, or "".
func (e Edge) Annotation(key string) string {
	return e.Annotations[key]
}

// ID returns the content hash identifying the edge.
func (e Edge) ID() string {
	d := xxhash.New()
	_, _ = d.WriteString(e.Child)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(e.Parent)
	_, _ = d.WriteString("\x00")
	writeAnnotations(d, e.Annotations)
	return fmt.Sprintf("%016x", d.Sum64())
}

// Direction selects which way a lineage traversal walks.
type Direction string

const (
	Ancestors   Direction = "ancestors"
	Descendants Direction = "descendants"
	Both        Direction = "both"
)

// ParseDirection accepts the full names and their usual abbreviations
// (a, anc, d, desc, b), case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "anc", "ancestor", "ancestors":
		return Ancestors, nil
	case "d", "desc", "descendant", "descendants":
		return Descendants, nil
	case "b", "both":
		return Both, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func writeAnnotations(d *xxhash.Digest, annotations map[string]string) {
	for _, k := range SortedKeys(annotations) {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(annotations[k])
		_, _ = d.WriteString("\x00")
	}
}

// SortedKeys returns the annotation keys in lexical order.
func SortedKeys(annotations map[string]string) []string {
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyAnnotations(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package query

import (
	"errors"
	"strconv"

	"github.com/vk/spadequery/internal/graph"
)

var (
	// ErrUnrecognized is returned for lines that match no query form. Callers
	// treat it as a silent no-op.
	ErrUnrecognized = errors.New("unrecognized query")
	// ErrMalformedInteger is returned when a numeric operand does not parse
	// as a non-negative integer.
	ErrMalformedInteger = errors.New("malformed integer operand")
	// ErrSyntax is returned when a recognized form has bad arguments.
	ErrSyntax = errors.New("query syntax error")
)

// NullExpression is the terminating expression meaning "no early
// termination".
const NullExpression = "null"

// Form identifies a query form.
type Form int

const (
	FormVertices Form = iota
	FormEdges
	FormPaths
	FormLineage
	FormPrint
	FormChildren
	FormParents
)

func (f Form) String() string {
	switch f {
	case FormVertices:
		return "vertices"
	case FormEdges:
		return "edges"
	case FormPaths:
		return "paths"
	case FormLineage:
		return "lineage"
	case FormPrint:
		return "print"
	case FormChildren:
		return "children"
	case FormParents:
		return "parents"
	default:
		return "unknown"
	}
}

// Header carries the parts shared by every form.
type Header struct {
	// Result is the name the output is bound to. Empty for print.
	Result string
	// Target is the bound graph named before the dot, if any.
	Target string
	// Expression is the source text to the right of "=", recorded for list.
	Expression string
}

// Head returns the header.
func (h Header) Head() Header { return h }

// Query is a parsed query line.
type Query interface {
	Form() Form
	Head() Header
}

type VerticesQuery struct {
	Header
	Filter string
}

type EdgesQuery struct {
	Header
	Filter string
}

type PathsQuery struct {
	Header
	Src, Dst, MaxLength int
}

// LineageQuery walks from Origin, which is either a store identifier or the
// name of a bound graph.
type LineageQuery struct {
	Header
	Origin    string
	Depth     int
	Direction graph.Direction
	// DirectionToken is the direction as written, forwarded to the service.
	DirectionToken string
	// Terminating is NullExpression when no terminating expression was given.
	Terminating string
}

// OriginID returns Origin as a store identifier.
func (q LineageQuery) OriginID() (int, bool) {
	id, err := strconv.Atoi(q.Origin)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// PrintQuery prints Target restricted to Keys; no keys means all keys.
type PrintQuery struct {
	Header
	Keys []string
}

type ChildrenQuery struct {
	Header
	Filter string
}

type ParentsQuery struct {
	Header
	Filter string
}

func (VerticesQuery) Form() Form { return FormVertices }
func (EdgesQuery) Form() Form    { return FormEdges }
func (PathsQuery) Form() Form    { return FormPaths }
func (LineageQuery) Form() Form  { return FormLineage }
func (PrintQuery) Form() Form    { return FormPrint }
func (ChildrenQuery) Form() Form { return FormChildren }
func (ParentsQuery) Form() Form  { return FormParents }

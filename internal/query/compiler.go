package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/spadequery/internal/bindings"
	"github.com/vk/spadequery/internal/graph"
)

// Scope reports which names are bound in the session.
type Scope interface {
	Has(name string) bool
}

// Plan is the compiled form of a query.
type Plan interface {
	Form() Form
}

// RemotePlan sends Request to the query service and binds the returned
// graph to Result.
type RemotePlan struct {
	Query      Query
	Result     string
	Expression string
	Request    string
}

// LocalPlan evaluates Query against the bound graph Target.
type LocalPlan struct {
	Query      Query
	Result     string
	Expression string
	Target     string
}

// FanOutPlan issues one lineage request per vertex of the bound graph Source
// and binds the union of the answers to Result.
type FanOutPlan struct {
	Query      LineageQuery
	Result     string
	Expression string
	Source     string
	Storage    string
}

// PrintPlan prints the bound graph Target.
type PrintPlan struct {
	Target string
	Keys   []string
}

// ExpandPlan runs Steps, in order, as if each had been typed.
type ExpandPlan struct {
	Query Query
	Steps []string
}

func (p RemotePlan) Form() Form { return p.Query.Form() }
func (p LocalPlan) Form() Form  { return p.Query.Form() }
func (p FanOutPlan) Form() Form { return FormLineage }
func (p PrintPlan) Form() Form  { return FormPrint }
func (p ExpandPlan) Form() Form { return p.Query.Form() }

// Request builds the lineage request for one store identifier.
func (p FanOutPlan) Request(storeID string) string {
	return lineageRequest(p.Storage, storeID, p.Query)
}

// Compile parses line and compiles it. storage selects the backend of
// remote requests.
func Compile(line, storage string, scope Scope) (Plan, error) {
	q, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return CompileQuery(q, storage, scope)
}

// CompileQuery turns a parsed query into a plan. References to names that
// are not in scope fail with a bindings.UnboundError.
func CompileQuery(q Query, storage string, scope Scope) (Plan, error) {
	h := q.Head()
	if h.Target != "" && !scope.Has(h.Target) {
		return nil, &bindings.UnboundError{Name: h.Target}
	}

	switch q := q.(type) {
	case PrintQuery:
		return PrintPlan{Target: q.Target, Keys: q.Keys}, nil

	case ChildrenQuery:
		return ExpandPlan{Query: q, Steps: expand(q.Header, "descendants", q.Filter)}, nil

	case ParentsQuery:
		return ExpandPlan{Query: q, Steps: expand(q.Header, "ancestors", q.Filter)}, nil

	case LineageQuery:
		if h.Target != "" {
			if _, ok := q.OriginID(); !ok {
				return nil, fmt.Errorf("%w: lineage origin %q", ErrMalformedInteger, q.Origin)
			}
			return local(q), nil
		}
		if scope.Has(q.Origin) {
			return FanOutPlan{
				Query:      q,
				Result:     h.Result,
				Expression: h.Expression,
				Source:     q.Origin,
				Storage:    storage,
			}, nil
		}
		if _, ok := q.OriginID(); !ok {
			if isDigits(q.Origin) {
				return nil, fmt.Errorf("%w: lineage origin %q", ErrMalformedInteger, q.Origin)
			}
			return nil, &bindings.UnboundError{Name: q.Origin}
		}
		return remote(q, lineageRequest(storage, q.Origin, q)), nil
	}

	if h.Target != "" {
		return local(q), nil
	}
	switch q := q.(type) {
	case VerticesQuery:
		return remote(q, request(storage, "vertices", q.Filter)), nil
	case EdgesQuery:
		return remote(q, request(storage, "edges", q.Filter)), nil
	case PathsQuery:
		return remote(q, request(storage, "paths",
			strconv.Itoa(q.Src), strconv.Itoa(q.Dst), strconv.Itoa(q.MaxLength))), nil
	}
	return nil, fmt.Errorf("%w: cannot compile %s", ErrUnrecognized, q.Form())
}

// Apply evaluates a local plan against the graph bound to its target.
func (p LocalPlan) Apply(g graph.Graph) (graph.Graph, error) {
	switch q := p.Query.(type) {
	case VerticesQuery:
		return g.GetVertices(q.Filter)
	case EdgesQuery:
		return g.GetEdges(q.Filter)
	case PathsQuery:
		return g.GetPaths(q.Src, q.Dst, q.MaxLength)
	case LineageQuery:
		id, ok := q.OriginID()
		if !ok {
			return nil, fmt.Errorf("%w: lineage origin %q", ErrMalformedInteger, q.Origin)
		}
		return g.GetLineage(id, q.Depth, q.Direction, q.Terminating)
	}
	return nil, fmt.Errorf("%w: %s cannot run locally", ErrSyntax, p.Query.Form())
}

func remote(q Query, req string) RemotePlan {
	h := q.Head()
	return RemotePlan{Query: q, Result: h.Result, Expression: h.Expression, Request: req}
}

func local(q Query) LocalPlan {
	h := q.Head()
	return LocalPlan{Query: q, Result: h.Result, Expression: h.Expression, Target: h.Target}
}

func request(storage, verb string, args ...string) string {
	parts := append([]string{"query", storage, verb}, args...)
	return strings.Join(parts, " ")
}

func lineageRequest(storage, origin string, q LineageQuery) string {
	return request(storage, "lineage", origin, strconv.Itoa(q.Depth), q.DirectionToken, q.Terminating)
}

// expand rewrites r = p.getChildren(e) as a lineage step followed by a
// filter of its own result.
func expand(h Header, direction, filter string) []string {
	return []string{
		fmt.Sprintf("%s = getLineage(%s, 1, %s)", h.Result, h.Target, direction),
		fmt.Sprintf("%s = %s.getVertices(%s)", h.Result, h.Result, filter),
	}
}

// isDigits reports whether s is a non-empty run of decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

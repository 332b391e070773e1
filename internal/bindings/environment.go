// Package bindings holds the named query results of one session.
package bindings

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/spadequery/internal/graph"
)

// ErrUnbound matches every UnboundError.
var ErrUnbound = errors.New("unbound name")

// UnboundError reports a reference to a name with no bound graph.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("graph %s does not exist", e.Name)
}

func (e *UnboundError) Is(target error) bool {
	return target == ErrUnbound
}

// Entry is one row of the environment.
type Entry struct {
	Name       string
	Expression string
	Graph      graph.Graph
}

// Environment maps result names to graphs and to the source expression that
// produced them. Both maps always share the same key set.
type Environment struct {
	mu          sync.RWMutex
	graphs      map[string]graph.Graph
	expressions map[string]string
}

func New() *Environment {
	return &Environment{
		graphs:      make(map[string]graph.Graph),
		expressions: make(map[string]string),
	}
}

// Bind stores g and its expression under name, replacing any earlier
// binding of the same name.
func (e *Environment) Bind(name string, g graph.Graph, expression string) {
	if g == nil {
		g = graph.Empty()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graphs[name] = g
	e.expressions[name] = expression
}

// Graph returns the graph bound to name.
func (e *Environment) Graph(name string) (graph.Graph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.graphs[name]
	if !ok {
		return nil, &UnboundError{Name: name}
	}
	return g, nil
}

// Expression returns the source expression recorded for name.
func (e *Environment) Expression(name string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	expr, ok := e.expressions[name]
	if !ok {
		return "", &UnboundError{Name: name}
	}
	return expr, nil
}

func (e *Environment) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.graphs[name]
	return ok
}

func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.graphs)
}

// Entries returns every binding ordered by name.
func (e *Environment) Entries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entries := make([]Entry, 0, len(e.graphs))
	for name, g := range e.graphs {
		entries = append(entries, Entry{Name: name, Expression: e.expressions[name], Graph: g})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

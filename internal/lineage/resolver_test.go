package lineage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/graph"
	"github.com/vk/spadequery/internal/transport"
)

// scripted answers each request from a fixed table.
type scripted struct {
	answers map[string]*transport.Response

	mu      sync.Mutex
	pending []string
	sent    []string
	closed  bool
}

func newScripted(answers map[string]*transport.Response) *scripted {
	return &scripted{answers: answers}
}

func (s *scripted) Send(_ context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, line)
	s.sent = append(s.sent, line)
	return nil
}

func (s *scripted) Receive(_ context.Context) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, errors.New("receive without request")
	}
	req := s.pending[0]
	s.pending = s.pending[1:]
	resp, ok := s.answers[req]
	if !ok {
		return nil, fmt.Errorf("%w: no answer for %q", transport.ErrChannelLost, req)
	}
	return resp, nil
}

func (s *scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func vertex(id, name string) graph.Vertex {
	return graph.NewVertex(map[string]string{graph.DefaultIdentifierKey: id, "name": name})
}

func lineageOf(t *testing.T, child, parent graph.Vertex) *graph.Memory {
	t.Helper()
	g := graph.New()
	g.AddVertex(child)
	g.AddVertex(parent)
	require.NoError(t, g.AddEdge(graph.NewEdge(child, parent, map[string]string{"type": "Used"})))
	return g
}

func requestFor(id string) string { return "query Neo4j lineage " + id + " 1 a null" }

type world struct {
	source  *graph.Memory
	answers map[string]*transport.Response
	partial []graph.Graph
}

// newWorld binds three source vertices. Vertices 1 and 2 have lineage,
// vertex 3 answers with a terminal message.
func newWorld(t *testing.T) world {
	t.Helper()
	v1, v2, v3 := vertex("1", "bash"), vertex("2", "cat"), vertex("3", "vim")
	src := graph.New()
	src.AddVertex(v1)
	src.AddVertex(v2)
	src.AddVertex(v3)

	l1 := lineageOf(t, v1, vertex("10", "passwd"))
	l2 := lineageOf(t, v2, vertex("20", "hosts"))
	return world{
		source: src,
		answers: map[string]*transport.Response{
			requestFor("1"): {Kind: transport.KindGraph, Graph: l1},
			requestFor("2"): {Kind: transport.KindGraph, Graph: l2},
			requestFor("3"): {Kind: transport.KindMessage, Message: "no lineage for 3"},
		},
		partial: []graph.Graph{l1, l2},
	}
}

func TestResolve_SequentialUnionsAndEmits(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	w := newWorld(t)
	ch := newScripted(w.answers)
	var messages []string

	// --- Act ---
	res, err := New(ch).Resolve(context.Background(), w.source, requestFor, func(m string) {
		messages = append(messages, m)
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, res.Resolved)
	assert.Equal(t, 1, res.Messages)
	assert.Equal(t, []string{"no lineage for 3"}, messages)
	assert.Len(t, ch.sent, 3)
	assert.True(t, graph.Equal(graph.Union(w.partial[0], w.partial[1]), res.Graph))
}

func TestResolve_ResultIndependentOfOrder(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	res, err := New(newScripted(w.answers)).Resolve(context.Background(), w.source, requestFor, nil)
	require.NoError(t, err)

	reversed := graph.Union(graph.Union(graph.Empty(), w.partial[1]), w.partial[0])
	assert.True(t, graph.Equal(reversed, res.Graph))
}

func TestResolve_SkipsVerticesWithoutIdentifier(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := graph.New()
	src.AddVertex(graph.NewVertex(map[string]string{"name": "orphan"}))
	ch := newScripted(nil)

	// --- Act ---
	res, err := New(ch).Resolve(context.Background(), src, requestFor, nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, ch.sent)
	assert.Empty(t, res.Graph.Vertices())
}

func TestResolve_CustomIdentifierKey(t *testing.T) {
	t.Parallel()
	src := graph.New()
	src.AddVertex(graph.NewVertex(map[string]string{"id": "9"}))
	ch := newScripted(map[string]*transport.Response{
		requestFor("9"): {Kind: transport.KindMessage, Message: "nothing"},
	})

	res, err := New(ch, WithIdentifierKey("id")).Resolve(context.Background(), src, requestFor, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{requestFor("9")}, ch.sent)
	assert.Equal(t, 1, res.Messages)
}

func TestResolve_ChannelFailureAborts(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	delete(w.answers, requestFor("2"))

	_, err := New(newScripted(w.answers)).Resolve(context.Background(), w.source, requestFor, nil)

	require.ErrorIs(t, err, transport.ErrChannelLost)
}

func TestResolve_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	w := newWorld(t)
	var mu sync.Mutex
	var conns []*scripted
	dial := func(context.Context) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		c := newScripted(w.answers)
		conns = append(conns, c)
		return c, nil
	}
	primary := newScripted(w.answers)
	var messages []string

	// --- Act ---
	res, err := New(primary, WithParallelism(4, dial)).Resolve(context.Background(), w.source, requestFor, func(m string) {
		messages = append(messages, m)
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Empty(t, primary.sent, "parallel mode must not use the session channel")
	assert.Len(t, conns, 3, "one worker per vertex when vertices < parallelism")
	total := 0
	for _, c := range conns {
		assert.True(t, c.closed)
		total += len(c.sent)
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"no lineage for 3"}, messages)
	assert.True(t, graph.Equal(graph.Union(w.partial[0], w.partial[1]), res.Graph))
}

func TestResolve_ParallelEmitsInVertexOrder(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := graph.New()
	answers := map[string]*transport.Response{}
	for i := 1; i <= 6; i++ {
		id := fmt.Sprint(i)
		src.AddVertex(vertex(id, "p"+id))
		answers[requestFor(id)] = &transport.Response{Kind: transport.KindMessage, Message: "msg " + id}
	}
	var want []string
	for _, v := range src.Vertices() {
		want = append(want, "msg "+v.Annotation(graph.DefaultIdentifierKey))
	}
	dial := func(context.Context) (Conn, error) { return newScripted(answers), nil }
	var got []string

	// --- Act ---
	_, err := New(nil, WithParallelism(3, dial)).Resolve(context.Background(), src, requestFor, func(m string) {
		got = append(got, m)
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_ParallelDialFailure(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	dial := func(context.Context) (Conn, error) { return nil, transport.ErrSessionEstablishment }

	_, err := New(nil, WithParallelism(2, dial)).Resolve(context.Background(), w.source, requestFor, nil)

	require.ErrorIs(t, err, transport.ErrSessionEstablishment)
}

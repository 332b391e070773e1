package lineage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/graph"
	"github.com/vk/spadequery/internal/transport"
	"golang.org/x/sync/errgroup"
)

// Exchanger performs one request/response round trip at a time.
type Exchanger interface {
	Send(ctx context.Context, line string) error
	Receive(ctx context.Context) (*transport.Response, error)
}

// Conn is an Exchanger the Resolver owns and closes.
type Conn interface {
	Exchanger
	io.Closer
}

// Dialer opens a ready-to-query connection for a parallel worker.
type Dialer func(ctx context.Context) (Conn, error)

// RequestFunc builds the lineage request for one store identifier.
type RequestFunc func(storeID string) string

// Result summarizes one fan-out.
type Result struct {
	Graph    graph.Graph
	Resolved int
	Messages int
	Skipped  int
	Elapsed  time.Duration
}

// Resolver fans a lineage query out over the vertices of a graph.
type Resolver struct {
	channel     Exchanger
	idKey       string
	parallelism int
	dial        Dialer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIdentifierKey sets the vertex annotation holding the store identifier.
func WithIdentifierKey(key string) Option {
	return func(r *Resolver) {
		if key != "" {
			r.idKey = key
		}
	}
}

// WithParallelism spreads requests over n channels opened by dial. n below
// 2 or a nil dial keeps the sequential behavior.
func WithParallelism(n int, dial Dialer) Option {
	return func(r *Resolver) {
		r.parallelism = n
		r.dial = dial
	}
}

func New(channel Exchanger, opts ...Option) *Resolver {
	r := &Resolver{
		channel:     channel,
		idKey:       graph.DefaultIdentifierKey,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// target is one vertex to resolve.
type target struct {
	storeID string
	request string
}

// Resolve requests the lineage of every vertex of source and unions the
// answers. emit receives each terminal message.
func (r *Resolver) Resolve(ctx context.Context, source graph.Graph, request RequestFunc, emit func(string)) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	res := &Result{}
	var targets []target
	for _, v := range source.Vertices() {
		id := v.Annotation(r.idKey)
		if id == "" {
			logger.Warn("Skipping vertex without store identifier.", "vertex", v.ID(), "annotation", r.idKey)
			res.Skipped++
			continue
		}
		targets = append(targets, target{storeID: id, request: request(id)})
	}
	logger.Debug("Resolving distributed lineage.", "vertices", len(targets), "skipped", res.Skipped)

	acc := graph.Graph(graph.New(graph.WithIdentifierKey(r.idKey)))
	collect := func(resp *transport.Response) {
		switch resp.Kind {
		case transport.KindGraph:
			acc = graph.Union(acc, resp.Graph)
			res.Resolved++
		default:
			res.Messages++
			if emit != nil {
				emit(resp.Message)
			}
		}
	}

	var err error
	if r.parallelism > 1 && r.dial != nil && len(targets) > 1 {
		err = r.resolveParallel(ctx, targets, collect)
	} else {
		err = r.resolveSequential(ctx, targets, collect)
	}
	if err != nil {
		return nil, err
	}

	res.Graph = acc
	res.Elapsed = time.Since(start)
	logger.Debug("Distributed lineage resolved.",
		"graphs", res.Resolved, "messages", res.Messages, "elapsed", res.Elapsed)
	return res, nil
}

func (r *Resolver) resolveSequential(ctx context.Context, targets []target, collect func(*transport.Response)) error {
	for _, t := range targets {
		resp, err := exchange(ctx, r.channel, t)
		if err != nil {
			return err
		}
		collect(resp)
	}
	return nil
}

func (r *Resolver) resolveParallel(ctx context.Context, targets []target, collect func(*transport.Response)) error {
	logger := ctxlog.FromContext(ctx)
	workers := min(r.parallelism, len(targets))
	logger.Debug("Starting lineage workers.", "workers", workers)

	responses := make([]*transport.Response, len(targets))
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range targets {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			conn, err := r.dial(gctx)
			if err != nil {
				return fmt.Errorf("lineage worker %d: %w", w, err)
			}
			defer conn.Close()
			for i := range jobs {
				resp, err := exchange(gctx, conn, targets[i])
				if err != nil {
					return err
				}
				responses[i] = resp
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for _, resp := range responses {
		collect(resp)
	}
	return nil
}

func exchange(ctx context.Context, ch Exchanger, t target) (*transport.Response, error) {
	if err := ch.Send(ctx, t.request); err != nil {
		return nil, fmt.Errorf("lineage of vertex %s: %w", t.storeID, err)
	}
	resp, err := ch.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("lineage of vertex %s: %w", t.storeID, err)
	}
	return resp, nil
}

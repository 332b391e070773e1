package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/metrics"
	"github.com/vk/spadequery/internal/query"
	"github.com/vk/spadequery/internal/session"
	"github.com/vk/spadequery/internal/transport"
)

// Dispatcher interprets input lines for one session.
type Dispatcher struct {
	sess    *session.Session
	out     io.Writer
	metrics *metrics.Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records query outcomes in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(d *Dispatcher) { d.metrics = r }
}

func New(sess *session.Session, out io.Writer, opts ...Option) *Dispatcher {
	d := &Dispatcher{sess: sess, out: out}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run reads and dispatches lines until the session closes or input ends.
// End of input closes the session like exit. A lost channel is reported and
// returned.
func (d *Dispatcher) Run(ctx context.Context, in LineReader) error {
	logger := ctxlog.FromContext(ctx)
	for d.sess.State() != session.StateClosed {
		line, err := in.ReadLine(Prompt)
		if errors.Is(err, io.EOF) {
			logger.Debug("Input ended, closing session.")
			fmt.Fprintln(d.out)
			return d.sess.Close(ctx)
		}
		if err != nil {
			logger.Error("Reading input failed, closing session.", "error", err)
			_ = d.sess.Close(ctx)
			return fmt.Errorf("read input: %w", err)
		}

		err = d.Dispatch(ctx, line)
		if err == nil {
			continue
		}
		fmt.Fprintf(d.out, "Error: %v\n", err)
		if transport.IsFatal(err) {
			logger.Error("Query channel lost, ending session.", "error", err)
			_ = d.sess.Close(ctx)
			return err
		}
	}
	return nil
}

// Dispatch executes one input line.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) error {
	if err := d.sess.Begin(); err != nil {
		return err
	}
	defer d.sess.End()

	trimmed := strings.TrimSpace(line)
	fields := strings.Fields(trimmed)
	ctxlog.FromContext(ctx).Debug("Dispatching line.", "line", trimmed)

	switch {
	case trimmed == "":
		return nil
	case trimmed == session.ExitCommand:
		return d.sess.Close(ctx)
	case trimmed == "list":
		return d.list()
	case fields[0] == "storage":
		return d.storage(ctx, fields)
	case fields[0] == "export":
		return d.export(ctx, fields)
	}
	return d.execute(ctx, trimmed)
}

func (d *Dispatcher) storage(ctx context.Context, fields []string) error {
	if len(fields) != 2 {
		return errors.New("usage: storage <name>")
	}
	ctxlog.FromContext(ctx).Debug("Storage selector changed.", "from", d.sess.Storage(), "to", fields[1])
	d.sess.SetStorage(fields[1])
	return nil
}

func (d *Dispatcher) export(ctx context.Context, fields []string) error {
	if len(fields) != 3 {
		return errors.New("usage: export <name> <path>")
	}
	g, err := d.sess.Env().Graph(fields[1])
	if err != nil {
		return err
	}
	if err := g.Export(fields[2]); err != nil {
		return fmt.Errorf("export %s: %w", fields[1], err)
	}
	ctxlog.FromContext(ctx).Info("Graph exported.", "name", fields[1], "path", fields[2])
	return nil
}

// execute compiles and runs one query line. Expanded queries re-enter here
// once per step.
func (d *Dispatcher) execute(ctx context.Context, line string) error {
	logger := ctxlog.FromContext(ctx)
	env := d.sess.Env()

	plan, err := query.Compile(line, d.sess.Storage(), env)
	if errors.Is(err, query.ErrUnrecognized) {
		logger.Debug("Ignoring unrecognized line.", "line", line)
		return nil
	}
	if err != nil {
		return err
	}

	start := time.Now()
	outcome := metrics.OutcomeGraph
	defer func() {
		d.metrics.ObserveQuery(plan.Form().String(), outcome, time.Since(start))
		d.metrics.SetBindings(env.Len())
	}()

	switch p := plan.(type) {
	case query.RemotePlan:
		resp, err := d.sess.Exchange(ctx, p.Request)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		if resp.Kind == transport.KindGraph {
			env.Bind(p.Result, resp.Graph, p.Expression)
		} else {
			outcome = metrics.OutcomeMessage
			d.message(resp.Message)
		}
		d.elapsed(time.Since(start))

	case query.LocalPlan:
		g, err := env.Graph(p.Target)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		result, err := p.Apply(g)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		env.Bind(p.Result, result, p.Expression)

	case query.FanOutPlan:
		src, err := env.Graph(p.Source)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		res, err := d.sess.Resolver().Resolve(ctx, src, p.Request, d.message)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		d.metrics.ObserveFanOut(res.Resolved + res.Messages)
		env.Bind(p.Result, res.Graph, p.Expression)
		d.elapsed(res.Elapsed)

	case query.PrintPlan:
		g, err := env.Graph(p.Target)
		if err != nil {
			outcome = metrics.OutcomeError
			return err
		}
		printGraph(d.out, g, p.Keys)

	case query.ExpandPlan:
		for _, step := range p.Steps {
			logger.Debug("Running expanded step.", "step", step)
			if err := d.execute(ctx, step); err != nil {
				outcome = metrics.OutcomeError
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) message(msg string) {
	fmt.Fprintf(d.out, "%s\n\n", msg)
}

func (d *Dispatcher) elapsed(took time.Duration) {
	fmt.Fprintf(d.out, "Time taken for query: %d ms\n", took.Milliseconds())
}

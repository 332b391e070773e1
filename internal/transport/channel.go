package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/graph"
	"github.com/vmihailenco/msgpack/v5"
)

// GraphTag is the response value announcing that a graph follows.
const GraphTag = "graph"

// Kind discriminates the two response shapes.
type Kind int

const (
	KindMessage Kind = iota
	KindGraph
)

func (k Kind) String() string {
	switch k {
	case KindGraph:
		return "graph"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Response is one decoded reply from the query service.
type Response struct {
	Kind    Kind
	Message string
	Graph   graph.Graph
}

// readDeadliner is implemented by net.Conn.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Channel is a request sink and response source over one stream.
type Channel struct {
	rw          io.ReadWriter
	w           *bufio.Writer
	dec         *msgpack.Decoder
	idKey       string
	readTimeout time.Duration
}

// Option configures a Channel.
type Option func(*Channel)

// WithIdentifierKey sets the store-identifier annotation of decoded graphs.
func WithIdentifierKey(key string) Option {
	return func(c *Channel) { c.idKey = key }
}

// WithReadTimeout bounds each Receive when the stream supports deadlines.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Channel) { c.readTimeout = d }
}

// New wraps rw into a Channel.
func New(rw io.ReadWriter, opts ...Option) *Channel {
	c := &Channel{
		rw:    rw,
		w:     bufio.NewWriter(rw),
		dec:   msgpack.NewDecoder(rw),
		idKey: graph.DefaultIdentifierKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send writes one request line and flushes it.
func (c *Channel) Send(ctx context.Context, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("request must be a single line: %q", line)
	}
	ctxlog.FromContext(ctx).Debug("Sending request.", "request", line)
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrChannelLost, err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrChannelLost, err)
	}
	return nil
}

// Receive blocks until one response is available and decodes it.
func (c *Channel) Receive(ctx context.Context) (*Response, error) {
	logger := ctxlog.FromContext(ctx)
	if d, ok := c.rw.(readDeadliner); ok && c.readTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrChannelLost, err)
		}
		defer d.SetReadDeadline(time.Time{})
	}

	v, err := c.dec.DecodeInterface()
	if err != nil {
		return nil, classifyReadError(err)
	}

	var tag string
	switch t := v.(type) {
	case string:
		tag = t
	case []byte:
		tag = string(t)
	default:
		return nil, fmt.Errorf("%w: expected a string value, got %T", ErrUnexpectedResponse, v)
	}

	if tag != GraphTag {
		logger.Debug("Received message.", "length", len(tag))
		return &Response{Kind: KindMessage, Message: tag}, nil
	}

	// A malformed payload must be consumed whole; the next response starts
	// right after it.
	raw, err := c.dec.DecodeRaw()
	if err != nil {
		return nil, classifyReadError(err)
	}
	var snap graph.Snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: graph payload: %w", ErrUnexpectedResponse, err)
	}
	g, err := graph.FromSnapshot(snap, graph.WithIdentifierKey(c.idKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	logger.Debug("Received graph.", "vertices", len(snap.Vertices), "edges", len(snap.Edges))
	return &Response{Kind: KindGraph, Graph: g}, nil
}

// Close closes the underlying stream if it can be closed.
func (c *Channel) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

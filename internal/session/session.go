// Package session defines a connected query session: one transport channel,
// one binding environment and one storage selector, created together and
// torn down together. Sessions never share state.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/spadequery/internal/bindings"
	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/graph"
	"github.com/vk/spadequery/internal/lineage"
	"github.com/vk/spadequery/internal/transport"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// ExitCommand is sent to the service when a session closes.
const ExitCommand = "exit"

// SessionFactory creates connected sessions. Different implementations can
// reach the service in different ways.
type SessionFactory interface {
	NewSession(ctx context.Context, cfg *config.Model) (*Session, error)
}

// Channel is the transport a session drives.
type Channel interface {
	Send(ctx context.Context, line string) error
	Receive(ctx context.Context) (*transport.Response, error)
	Close() error
}

// State is the dispatcher-visible lifecycle state.
type State int

const (
	StateReady State = iota
	StateExecuting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is not safe for concurrent use; one command runs at a time.
type Session struct {
	id       string
	banner   string
	channel  Channel
	env      *bindings.Environment
	storage  string
	idKey    string
	state    State
	resolver *lineage.Resolver

	parallelism int
	dial        lineage.Dialer
}

// Option configures a Session.
type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithBanner(banner string) Option {
	return func(s *Session) { s.banner = banner }
}

// WithStorage sets the initial storage selector.
func WithStorage(storage string) Option {
	return func(s *Session) {
		if storage != "" {
			s.storage = storage
		}
	}
}

// WithIdentifierKey sets the vertex annotation holding store identifiers.
func WithIdentifierKey(key string) Option {
	return func(s *Session) {
		if key != "" {
			s.idKey = key
		}
	}
}

// WithLineageParallelism lets distributed lineage use n extra channels.
func WithLineageParallelism(n int, dial lineage.Dialer) Option {
	return func(s *Session) {
		s.parallelism = n
		s.dial = dial
	}
}

// New wraps an established channel into a ready session.
func New(channel Channel, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		channel:     channel,
		env:         bindings.New(),
		storage:     config.DefaultQueryStorage,
		idKey:       graph.DefaultIdentifierKey,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = lineage.New(channel,
		lineage.WithIdentifierKey(s.idKey),
		lineage.WithParallelism(s.parallelism, s.dial),
	)
	return s
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Banner() string              { return s.banner }
func (s *Session) Env() *bindings.Environment  { return s.env }
func (s *Session) Resolver() *lineage.Resolver { return s.resolver }
func (s *Session) State() State                { return s.state }
func (s *Session) Storage() string             { return s.storage }
func (s *Session) IdentifierKey() string       { return s.idKey }
func (s *Session) SetStorage(storage string)   { s.storage = storage }

// Begin moves the session from ready to executing.
func (s *Session) Begin() error {
	if s.state == StateClosed {
		return ErrClosed
	}
	s.state = StateExecuting
	return nil
}

// End returns an executing session to ready.
func (s *Session) End() {
	if s.state == StateExecuting {
		s.state = StateReady
	}
}

// Exchange sends one request and waits for its response.
func (s *Session) Exchange(ctx context.Context, request string) (*transport.Response, error) {
	if s.state == StateClosed {
		return nil, ErrClosed
	}
	if err := s.channel.Send(ctx, request); err != nil {
		return nil, err
	}
	return s.channel.Receive(ctx)
}

// Close tells the service the session is over and releases the channel.
// Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.state == StateClosed {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Closing session.", "session", s.id)
	s.state = StateClosed

	sendErr := s.channel.Send(ctx, ExitCommand)
	if err := s.channel.Close(); err != nil {
		return fmt.Errorf("close channel: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("send %s: %w", ExitCommand, sendErr)
	}
	return nil
}

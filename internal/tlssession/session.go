// Package tlssession provides a session.SessionFactory that reaches the
// query service over TLS.
package tlssession

import (
	"context"
	"fmt"

	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/lineage"
	"github.com/vk/spadequery/internal/session"
	"github.com/vk/spadequery/internal/transport"
)

// DialFunc opens a raw channel to the service.
type DialFunc func(ctx context.Context, cfg *config.Model) (*transport.Channel, error)

// SessionFactory implements session.SessionFactory over TLS.
type SessionFactory struct {
	dial DialFunc
}

var _ session.SessionFactory = (*SessionFactory)(nil)

// Option configures a SessionFactory.
type Option func(*SessionFactory)

// WithDialFunc replaces the TLS dialer, mainly for tests.
func WithDialFunc(dial DialFunc) Option {
	return func(f *SessionFactory) { f.dial = dial }
}

func New(opts ...Option) *SessionFactory {
	f := &SessionFactory{dial: transport.Dial}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSession dials the service, performs the banner handshake and returns a
// ready session. Failures wrap transport.ErrSessionEstablishment.
func (f *SessionFactory) NewSession(ctx context.Context, cfg *config.Model) (*session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("tlssession.SessionFactory.NewSession called")

	ch, banner, err := f.open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var dial lineage.Dialer
	if cfg.LineageParallelism > 1 {
		dial = func(ctx context.Context) (lineage.Conn, error) {
			ch, _, err := f.open(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return &workerConn{Channel: ch}, nil
		}
	}

	return session.New(ch,
		session.WithBanner(banner),
		session.WithStorage(cfg.QueryStorage),
		session.WithIdentifierKey(cfg.StorageIdentifier),
		session.WithLineageParallelism(cfg.LineageParallelism, dial),
	), nil
}

// open dials and consumes the banner: the client sends an empty line and the
// service answers with one message.
func (f *SessionFactory) open(ctx context.Context, cfg *config.Model) (*transport.Channel, string, error) {
	ch, err := f.dial(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	if err := ch.Send(ctx, ""); err != nil {
		_ = ch.Close()
		return nil, "", fmt.Errorf("%w: banner request: %w", transport.ErrSessionEstablishment, err)
	}
	resp, err := ch.Receive(ctx)
	if err != nil {
		_ = ch.Close()
		return nil, "", fmt.Errorf("%w: banner: %w", transport.ErrSessionEstablishment, err)
	}
	if resp.Kind != transport.KindMessage {
		_ = ch.Close()
		return nil, "", fmt.Errorf("%w: banner: %w: got %s", transport.ErrSessionEstablishment, transport.ErrUnexpectedResponse, resp.Kind)
	}
	return ch, resp.Message, nil
}

// workerConn is an extra channel used by one lineage worker. Closing it
// ends its server-side session too.
type workerConn struct {
	*transport.Channel
}

func (c *workerConn) Close() error {
	_ = c.Channel.Send(context.Background(), session.ExitCommand)
	return c.Channel.Close()
}

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/transport"
)

type recordingChannel struct {
	sent   []string
	reply  *transport.Response
	closed bool
}

func (c *recordingChannel) Send(_ context.Context, line string) error {
	c.sent = append(c.sent, line)
	return nil
}

func (c *recordingChannel) Receive(context.Context) (*transport.Response, error) {
	return c.reply, nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestSession_Defaults(t *testing.T) {
	t.Parallel()
	s := New(&recordingChannel{})

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "Neo4j", s.Storage())
	assert.Equal(t, "storage_identifier", s.IdentifierKey())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 0, s.Env().Len())
	assert.NotNil(t, s.Resolver())
}

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	ch := &recordingChannel{reply: &transport.Response{Kind: transport.KindMessage, Message: "ok"}}
	s := New(ch, WithStorage("PostgreSQL"), WithBanner("welcome"))

	// --- Act & Assert ---
	require.NoError(t, s.Begin())
	assert.Equal(t, StateExecuting, s.State())
	resp, err := s.Exchange(context.Background(), "query PostgreSQL vertices *")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
	s.End()
	assert.Equal(t, StateReady, s.State())

	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, StateClosed, s.State())
	assert.True(t, ch.closed)
	assert.Equal(t, []string{"query PostgreSQL vertices *", ExitCommand}, ch.sent)
	assert.Equal(t, "welcome", s.Banner())

	require.ErrorIs(t, s.Begin(), ErrClosed)
	_, err = s.Exchange(context.Background(), "query x vertices *")
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, s.Close(context.Background()))
	assert.Len(t, ch.sent, 2, "closing twice must not send exit twice")
}

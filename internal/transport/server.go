package transport

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vk/spadequery/internal/graph"
	"github.com/vmihailenco/msgpack/v5"
)

// ServerConn is the query-service side of a Channel. It reads request lines
// and writes framed responses.
type ServerConn struct {
	r   *bufio.Reader
	w   *bufio.Writer
	enc *msgpack.Encoder
}

// NewServerConn wraps the service side of a stream.
func NewServerConn(rw io.ReadWriter) *ServerConn {
	w := bufio.NewWriter(rw)
	return &ServerConn{
		r:   bufio.NewReader(rw),
		w:   w,
		enc: msgpack.NewEncoder(w),
	}
}

// ReadRequest returns the next request line without its terminator.
func (s *ServerConn) ReadRequest() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WriteMessage sends a terminal message.
func (s *ServerConn) WriteMessage(msg string) error {
	if msg == GraphTag {
		return fmt.Errorf("message %q collides with the graph tag", msg)
	}
	if err := s.enc.EncodeString(msg); err != nil {
		return err
	}
	return s.w.Flush()
}

// WriteGraph sends the graph tag followed by the graph.
func (s *ServerConn) WriteGraph(g graph.Graph) error {
	if err := s.enc.EncodeString(GraphTag); err != nil {
		return err
	}
	if err := s.enc.Encode(graph.SnapshotOf(g)); err != nil {
		return err
	}
	return s.w.Flush()
}

// WriteRaw sends an arbitrary value, for services that misbehave.
func (s *ServerConn) WriteRaw(v any) error {
	if err := s.enc.Encode(v); err != nil {
		return err
	}
	return s.w.Flush()
}

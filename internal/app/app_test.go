package app

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/graph"
	"github.com/vk/spadequery/internal/session"
	"github.com/vk/spadequery/internal/tlssession"
	"github.com/vk/spadequery/internal/transport"
)

const banner = "Available commands: getVertices, getEdges, getPaths, getLineage"

// fakeService answers the banner handshake and a few queries over pipes.
type fakeService struct {
	mu       sync.Mutex
	requests []string
	wg       sync.WaitGroup
}

func (s *fakeService) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeService) factory(t *testing.T) session.SessionFactory {
	t.Helper()
	return tlssession.New(tlssession.WithDialFunc(func(context.Context, *config.Model) (*transport.Channel, error) {
		client, server := net.Pipe()
		t.Cleanup(func() { _ = client.Close() })
		s.wg.Add(1)
		go s.serve(t, server)
		return transport.New(client), nil
	}))
}

func (s *fakeService) serve(t *testing.T, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	srv := transport.NewServerConn(conn)
	for {
		req, err := srv.ReadRequest()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		switch {
		case req == "":
			err = srv.WriteMessage(banner)
		case req == session.ExitCommand:
			return
		case strings.Contains(req, " vertices "):
			g := graph.New()
			g.AddVertex(graph.NewVertex(map[string]string{"type": "Process", "name": "bash"}))
			err = srv.WriteGraph(g)
		default:
			err = srv.WriteMessage("unsupported")
		}
		if err != nil {
			t.Logf("fake service write failed: %v", err)
			return
		}
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	svc := &fakeService{}
	appConfig, err := NewConfig(Config{})
	require.NoError(t, err)
	a, out, logs := SetupAppTest(t, appConfig, svc.factory(t))
	in := strings.NewReader("g1 = getVertices(type:Process)\nlist\nexit\n")

	// --- Act ---
	err = a.Run(context.Background(), in)
	svc.wg.Wait()

	// --- Assert ---
	require.NoError(t, err)
	output := out.String()
	assert.Contains(t, output, Title)
	assert.Contains(t, output, banner)
	assert.Contains(t, output, "Time taken for query: ")
	assert.Contains(t, output, "getVertices(type:Process)")
	assert.Contains(t, output, "-> ")
	assert.Equal(t, []string{"", "query Neo4j vertices type:Process", session.ExitCommand}, svc.seen())
	assert.Contains(t, logs.String(), "session=")
}

func TestRun_ConfigFilesAndOverrides(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "client.hcl")
	yamlPath := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(hclPath, []byte(`query_storage = "PostgreSQL"`+"\n"), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("query_storage: Quickstep\n"), 0o600))

	testCases := []struct {
		name      string
		paths     []string
		override  string
		wantQuery string
	}{
		{name: "hcl only", paths: []string{hclPath}, wantQuery: "query PostgreSQL vertices *"},
		{name: "yaml after hcl", paths: []string{hclPath, yamlPath}, wantQuery: "query Quickstep vertices *"},
		{name: "flag wins", paths: []string{hclPath, yamlPath}, override: "Neo4j", wantQuery: "query Neo4j vertices *"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &fakeService{}
			cfg := Config{ConfigPaths: tc.paths}
			if tc.override != "" {
				cfg.Overrides = &config.Overlay{QueryStorage: &tc.override}
			}
			appConfig, err := NewConfig(cfg)
			require.NoError(t, err)
			a, _, _ := SetupAppTest(t, appConfig, svc.factory(t))

			err = a.Run(context.Background(), strings.NewReader("g = getVertices(*)\n"))
			svc.wg.Wait()

			require.NoError(t, err)
			assert.Contains(t, svc.seen(), tc.wantQuery)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()
	zero := 0
	appConfig, err := NewConfig(Config{Overrides: &config.Overlay{LineageParallelism: &zero}})
	require.NoError(t, err)
	a, _, _ := SetupAppTest(t, appConfig, tlssession.New())

	err = a.Run(context.Background(), strings.NewReader(""))

	require.ErrorIs(t, err, ErrConfig)
}

func TestRun_SessionEstablishmentFailure(t *testing.T) {
	t.Parallel()
	port := "not-a-port"
	appConfig, err := NewConfig(Config{Overrides: &config.Overlay{QueryPort: &port}})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, appConfig, tlssession.New())

	err = a.Run(context.Background(), strings.NewReader(""))

	require.ErrorIs(t, err, transport.ErrSessionEstablishment)
	assert.NotContains(t, out.String(), Title)
}

func TestRoutes(t *testing.T) {
	t.Parallel()
	appConfig, err := NewConfig(Config{})
	require.NoError(t, err)
	a, _, _ := SetupAppTest(t, appConfig, tlssession.New())
	a.Metrics().SetBindings(2)

	health := httptest.NewRecorder()
	a.routes().ServeHTTP(health, httptest.NewRequest("GET", "/health", nil))
	metrics := httptest.NewRecorder()
	a.routes().ServeHTTP(metrics, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, health.Code)
	assert.Equal(t, "OK\n", health.Body.String())
	assert.Contains(t, metrics.Body.String(), "spadequery_bindings 2")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		in      Config
		wantErr bool
	}{
		{name: "defaults", in: Config{}},
		{name: "json debug", in: Config{LogFormat: "JSON", LogLevel: "Debug"}},
		{name: "bad format", in: Config{LogFormat: "xml"}, wantErr: true},
		{name: "bad level", in: Config{LogLevel: "loud"}, wantErr: true},
		{name: "bad port", in: Config{HealthcheckPort: 70000}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewConfig(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{"text", "json"}, got.LogFormat)
			assert.NotEmpty(t, got.LogLevel)
		})
	}
}

package yamlconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/config"
)

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	f := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(f, []byte(`
host: provenance.example
local_query_port: "20002"
storage_identifier: storageId
tls:
  ca_file: ${SPADE_ROOT}/cfg/ssl/server.pem
  insecure_skip_verify: true
`), 0o600))
	loader := &Loader{getenv: func(k string) string {
		if k == "SPADE_ROOT" {
			return "/opt/spade"
		}
		return ""
	}}

	// --- Act ---
	m, err := loader.Load(context.Background(), config.Defaults(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "provenance.example", m.Host)
	assert.Equal(t, "20002", m.QueryPort)
	assert.Equal(t, "storageId", m.StorageIdentifier)
	assert.Equal(t, "/opt/spade/cfg/ssl/server.pem", m.TLS.CAFile)
	assert.True(t, m.TLS.InsecureSkipVerify)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	m, err := NewLoader().Load(context.Background(), config.Defaults(), f)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), m)
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(f, []byte("colour: blue\n"), 0o600))

	_, err := NewLoader().Load(context.Background(), config.Defaults(), f)
	require.Error(t, err)
}

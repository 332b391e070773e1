package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/config"
)

func TestFormatLoader_DirectoryUsesBothFormats(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`host = "spade.internal"`+"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("local_query_port: \"29999\"\n"), 0o600))
	base := config.Defaults()

	// --- Act ---
	got, err := NewLoader().Load(context.Background(), base, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "spade.internal", got.Host)
	assert.Equal(t, "29999", got.QueryPort)
	assert.Equal(t, config.DefaultHost, base.Host, "base must not be mutated")
}

func TestFormatLoader_NoPathsReturnsCopy(t *testing.T) {
	t.Parallel()
	base := config.Defaults()

	got, err := NewLoader().Load(context.Background(), base)

	require.NoError(t, err)
	assert.Equal(t, base, got)
	assert.NotSame(t, base, got)
}

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPaths(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	a := filepath.Join(dir, "a.hcl")
	b := filepath.Join(nested, "b.hcl")
	c := filepath.Join(dir, "c.txt")
	for _, f := range []string{a, b, c} {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	}

	// --- Act ---
	files, err := ExpandPaths([]string{dir, a, filepath.Join(dir, "missing")}, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)
}

func TestExpandPaths_ExplicitFileKeepsAnyExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "client.conf")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))

	files, err := ExpandPaths([]string{f}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{f}, files)
}

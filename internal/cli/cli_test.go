package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spadequery/internal/app"
	"github.com/vk/spadequery/internal/transport"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()
	// --- Act ---
	cfg, shouldExit, err := Parse([]string{}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.ConfigPaths)
	require.NotNil(t, cfg.Overrides)
	assert.Nil(t, cfg.Overrides.Host, "unset flags must not override files")
	assert.Nil(t, cfg.Overrides.QueryStorage)
}

func TestParse_FlagsBecomeOverrides(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	args := []string{
		"-c", "base.hcl",
		"--config", "site.yaml",
		"--host", "spade.internal",
		"--port", "29999",
		"--storage", "PostgreSQL",
		"--storage-identifier", "id",
		"--lineage-parallelism", "4",
		"--healthcheck-port", "9090",
		"--log-format", "json",
		"--log-level", "debug",
		"extra.hcl",
	}

	// --- Act ---
	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, []string{"base.hcl", "site.yaml", "extra.hcl"}, cfg.ConfigPaths)
	assert.Equal(t, "spade.internal", *cfg.Overrides.Host)
	assert.Equal(t, "29999", *cfg.Overrides.QueryPort)
	assert.Equal(t, "PostgreSQL", *cfg.Overrides.QueryStorage)
	assert.Equal(t, "id", *cfg.Overrides.StorageIdentifier)
	assert.Equal(t, 4, *cfg.Overrides.LineageParallelism)
	assert.Equal(t, 9090, cfg.HealthcheckPort)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "getLineage")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--this-is-not-a-valid-flag"}},
		{name: "bad log format", args: []string{"--log-format", "xml"}},
		{name: "bad log level", args: []string{"--log-level", "chatty"}},
		{name: "non-numeric parallelism", args: []string{"--lineage-parallelism", "many"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, CodeUsage, exitErr.Code)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "session establishment", err: fmt.Errorf("%w: dial", transport.ErrSessionEstablishment), want: CodeNoConnection},
		{name: "config", err: fmt.Errorf("%w: bad", app.ErrConfig), want: CodeUsage},
		{name: "channel lost", err: fmt.Errorf("session x: %w", transport.ErrChannelLost), want: CodeFailure},
		{name: "exit error passes through", err: &ExitError{Code: 7, Message: "seven"}, want: 7},
		{name: "other", err: errors.New("boom"), want: CodeFailure},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var exitErr *ExitError
			require.ErrorAs(t, Classify(tc.err), &exitErr)
			assert.Equal(t, tc.want, exitErr.Code)
		})
	}
	assert.NoError(t, Classify(nil))
}

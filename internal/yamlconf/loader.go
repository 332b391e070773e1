// Package yamlconf provides a YAML implementation of the configuration
// Loader interface defined in the `config` package. `${VAR}` references are
// expanded from the process environment before decoding.
package yamlconf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// Load reads every .yaml/.yml file reachable from paths and merges them over
// base in discovery order.
func (l *Loader) Load(ctx context.Context, base *config.Model, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ExpandPaths(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := base.Clone()
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		expanded := os.Expand(string(raw), l.getenv)

		var overlay config.Overlay
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(&overlay); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
		}
		if err := model.Apply(&overlay); err != nil {
			return nil, fmt.Errorf("failed to apply YAML file %s: %w", file, err)
		}
	}
	return model, nil
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/hcl"
	"github.com/vk/spadequery/internal/yamlconf"
)

// formatLoader routes each path to the loader for its format. Directories
// are searched by both loaders, HCL first.
type formatLoader struct {
	hcl  config.Loader
	yaml config.Loader
}

// NewLoader returns a loader that understands every supported format.
func NewLoader() config.Loader {
	return &formatLoader{hcl: hcl.NewLoader(), yaml: yamlconf.NewLoader()}
}

func (l *formatLoader) Load(ctx context.Context, base *config.Model, paths ...string) (*config.Model, error) {
	model := base.Clone()
	for _, p := range paths {
		for _, loader := range l.loadersFor(p) {
			next, err := loader.Load(ctx, model, p)
			if err != nil {
				return nil, err
			}
			model = next
		}
	}
	return model, nil
}

func (l *formatLoader) loadersFor(path string) []config.Loader {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return []config.Loader{l.hcl, l.yaml}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return []config.Loader{l.yaml}
	}
	return []config.Loader{l.hcl}
}

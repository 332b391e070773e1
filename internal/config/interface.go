package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, merging every file it
	// finds over base in order, and returns the resulting model.
	Load(ctx context.Context, base *Model, paths ...string) (*Model, error)
}

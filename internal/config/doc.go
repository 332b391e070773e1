// Package config defines the format-agnostic configuration model for the
// query client, along with the Loader interface for reading it from files.
//
// The `config.Model` is the single source of truth for the session and
// transport packages. Concrete loaders, such as for HCL or YAML, are provided
// in separate packages and merge their files over `Defaults()`.
package config

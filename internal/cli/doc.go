// Package cli turns the process arguments into an app.Config. A cobra
// command defines the flags; only flags given explicitly become config
// overrides, and the remaining arguments name config files or directories.
// Classify maps the run's error to the process exit code.
package cli

package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vk/spadequery/internal/app"
	"github.com/vk/spadequery/internal/config"
)

const longHelp = `spadequery - interactive query client for a SPADE provenance service.

Connects to the query service over TLS and reads one command per line:

  <result> = getVertices(expression)
  <result> = getEdges(expression)
  <result> = getPaths(src, dst, maxLength)
  <result> = getLineage(vertexId | <result>, depth, direction[, terminating])
  <result> = <result>.getChildren(expression)
  <result> = <result>.getParents(expression)
  <result>.print(annotation, ...)
  export <result> <path>
  storage <name>
  list
  exit

Configuration files (.hcl, .yaml, .yml or directories of them) are applied
in order; flags override every file.`

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if args == nil {
		args = []string{}
	}

	var (
		configPaths []string
		host        string
		port        string
		storage     string
		storageID   string
		parallelism int
		healthPort  int
		logFormat   string
		logLevel    string

		parsed *app.Config
	)

	cmd := &cobra.Command{
		Use:           "spadequery [flags] [CONFIG_PATH...]",
		Short:         "Interactive query client for a SPADE provenance service.",
		Long:          longHelp,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			flags := cmd.Flags()
			overrides := &config.Overlay{}
			if flags.Changed("host") {
				overrides.Host = &host
			}
			if flags.Changed("port") {
				overrides.QueryPort = &port
			}
			if flags.Changed("storage") {
				overrides.QueryStorage = &storage
			}
			if flags.Changed("storage-identifier") {
				overrides.StorageIdentifier = &storageID
			}
			if flags.Changed("lineage-parallelism") {
				overrides.LineageParallelism = &parallelism
			}

			cfg, err := app.NewConfig(app.Config{
				ConfigPaths:     append(configPaths, positional...),
				Overrides:       overrides,
				LogFormat:       logFormat,
				LogLevel:        logLevel,
				HealthcheckPort: healthPort,
			})
			if err != nil {
				return err
			}
			parsed = cfg
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringArrayVarP(&configPaths, "config", "c", nil, "Configuration file or directory; repeatable.")
	flags.StringVar(&host, "host", config.DefaultHost, "Query service host.")
	flags.StringVar(&port, "port", config.DefaultQueryPort, "Query service port.")
	flags.StringVar(&storage, "storage", config.DefaultQueryStorage, "Initial storage selector.")
	flags.StringVar(&storageID, "storage-identifier", config.DefaultStorageIdentifier, "Vertex annotation holding the store identifier.")
	flags.IntVar(&parallelism, "lineage-parallelism", 1, "Channels used to resolve lineage of a bound graph.")
	flags.IntVar(&healthPort, "healthcheck-port", 0, "Port for the HTTP health and metrics server. 0 is disabled.")
	flags.StringVar(&logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}
	if parsed == nil {
		// Help was requested.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config_paths", parsed.ConfigPaths)
	return parsed, false, nil
}

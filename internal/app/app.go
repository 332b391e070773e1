package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/ctxlog"
	"github.com/vk/spadequery/internal/dispatcher"
	"github.com/vk/spadequery/internal/metrics"
	"github.com/vk/spadequery/internal/session"
)

// Title is printed once the session is established.
const Title = "SPADE 2.0 Query Client"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	appConfig  *Config
	loader     config.Loader
	factory    session.SessionFactory
	metrics    *metrics.Recorder
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Logs go to logW so
// they never interleave with query output on outW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, factory session.SessionFactory) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:      outW,
		logger:    logger,
		appConfig: appConfig,
		loader:    loader,
		factory:   factory,
		metrics:   metrics.New(),
	}
}

// Metrics returns the application's recorder. This is primarily for testing.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// LoadConfig builds the client model from defaults, files and overrides.
func (a *App) LoadConfig(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model, err := a.loader.Load(ctx, config.Defaults(), a.appConfig.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := model.Apply(a.appConfig.Overrides); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	logger.Debug("Configuration loaded.",
		"host", model.Host,
		"port", model.QueryPort,
		"storage", model.QueryStorage,
		"storage_identifier", model.StorageIdentifier,
		"lineage_parallelism", model.LineageParallelism)
	return model, nil
}

// Run connects a session and drives the command loop over in until the
// session closes.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.LoadConfig(ctx)
	if err != nil {
		return err
	}

	if a.appConfig.HealthcheckPort > 0 {
		a.startHealthCheckServer(ctx, a.appConfig.HealthcheckPort)
		defer a.closeHealthCheckServer(ctx)
	}

	sess, err := a.factory.NewSession(ctx, model)
	if err != nil {
		return err
	}
	ctx = ctxlog.With(ctx, "session", sess.ID())
	ctxlog.FromContext(ctx).Info("Session established.", "address", model.Host+":"+model.QueryPort)

	fmt.Fprintf(a.outW, "\n%s\n\n", Title)
	fmt.Fprintf(a.outW, "%s\n\n", sess.Banner())

	d := dispatcher.New(sess, a.outW, dispatcher.WithMetrics(a.metrics))
	if err := d.Run(ctx, dispatcher.NewConsoleReader(in, a.outW)); err != nil {
		return fmt.Errorf("session %s: %w", sess.ID(), err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Package app provides the application context and dependency management
// for the datamap CLI. Configuration, logging and the resources opened by
// commands live here so commands stay thin.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/datamap"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/sink"
	"github.com/agentstation/datamap/pkg/tables"
)

// App represents the datamap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// fixedLogger keeps a logger supplied with WithLogger across flag parsing
	fixedLogger bool

	// stdout overrides the command output writer when set
	stdout io.Writer

	// closers are released by Shutdown
	mu      sync.Mutex
	closers []io.Closer
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Tables loads the tables at path, or the built-in tables when path is empty.
func (a *App) Tables(path string) (*tables.Tables, error) {
	if path == "" {
		return tables.Default(), nil
	}
	return tables.Load(path)
}

// PipelineConfig selects the inputs and outputs of a pipeline run.
type PipelineConfig struct {
	DataDir    string
	OutDir     string
	TablesFile string
	SQLitePath string
}

// Pipeline builds a pipeline from cfg. An SQLite sink opened here is closed
// by Shutdown.
func (a *App) Pipeline(cfg PipelineConfig) (*datamap.Pipeline, error) {
	t, err := a.Tables(cfg.TablesFile)
	if err != nil {
		return nil, err
	}

	opts := []datamap.Option{
		datamap.WithDataDir(cfg.DataDir),
		datamap.WithTables(t),
	}
	if cfg.OutDir != "" {
		opts = append(opts, datamap.WithOutputDir(cfg.OutDir))
	}
	if cfg.SQLitePath != "" {
		db, err := sink.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.track(db)
		opts = append(opts, datamap.WithSink(db))
	}

	return datamap.New(opts...)
}

func (a *App) track(c io.Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c)
}

// Shutdown releases resources opened by commands.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = true
		return nil
	}
}

// WithOutput sets the writer commands print results to.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}

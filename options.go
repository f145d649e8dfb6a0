package datamap

import (
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/sink"
	"github.com/agentstation/datamap/pkg/sources"
	"github.com/agentstation/datamap/pkg/tables"
)

// Option is a function that configures a Pipeline
type Option func(*config) error

// config holds the pipeline configuration
type config struct {
	dataDir string
	outDir  string
	tables  *tables.Tables
	sources []sources.Source
	sinks   []sink.Sink

	// replaceSinks drops the default CSV sink
	replaceSinks bool
}

func defaultConfig() *config {
	return &config{
		dataDir: constants.DefaultDataDir,
	}
}

// WithDataDir sets the directory the default sources read from
func WithDataDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("data_dir", dir, "must not be empty")
		}
		c.dataDir = dir
		return nil
	}
}

// WithOutputDir sets the directory the CSV snapshots are written to.
// It defaults to the data directory.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		c.outDir = dir
		return nil
	}
}

// WithTables sets the taxonomy and alias tables used by the cleaner
func WithTables(t *tables.Tables) Option {
	return func(c *config) error {
		if t == nil {
			return errors.NewValidationError("tables", nil, "must not be nil")
		}
		c.tables = t
		return nil
	}
}

// WithSources replaces the default sources. They are read in the order given.
func WithSources(srcs ...sources.Source) Option {
	return func(c *config) error {
		if len(srcs) == 0 {
			return errors.NewValidationError("sources", nil, "at least one source is required")
		}
		c.sources = srcs
		return nil
	}
}

// WithSink adds a sink that receives both snapshots after the CSV sink
func WithSink(s sink.Sink) Option {
	return func(c *config) error {
		c.sinks = append(c.sinks, s)
		return nil
	}
}

// WithSinks replaces every sink, including the default CSV sink
func WithSinks(sinks ...sink.Sink) Option {
	return func(c *config) error {
		c.sinks = sinks
		c.replaceSinks = true
		return nil
	}
}

// Package datamap merges open-data catalog metadata from several sources into
// one canonical catalog, classifies every dataset against a fixed taxonomy
// and normalizes owners and licences.
//
// A run reads every source, merges their records, writes the raw merge,
// cleans it and writes the cleaned catalog:
//
//	p, err := datamap.New(datamap.WithDataDir("data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := p.Run(ctx)
//
// A source that cannot be read aborts the run before anything is written.
package datamap

import (
	"context"
	"fmt"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/datamap/internal/sources/directory"
	"github.com/agentstation/datamap/internal/sources/file"
	"github.com/agentstation/datamap/pkg/cleaner"
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/sink"
	"github.com/agentstation/datamap/pkg/sources"
	"github.com/agentstation/datamap/pkg/tables"
)

// Pipeline runs the merge-and-classify job.
type Pipeline struct {
	config  *config
	sources []sources.Source
	sink    sink.Sink
	cleaner *cleaner.Cleaner
}

// New creates a Pipeline with the given options
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if cfg.tables == nil {
		cfg.tables = tables.Default()
	}
	if cfg.outDir == "" {
		cfg.outDir = cfg.dataDir
	}

	srcs := cfg.sources
	if srcs == nil {
		srcs = DefaultSources(cfg.dataDir)
	}

	sinks := cfg.sinks
	if !cfg.replaceSinks {
		sinks = append([]sink.Sink{sink.NewCSVSink(cfg.outDir)}, cfg.sinks...)
	}
	if len(sinks) == 0 {
		return nil, errors.NewConfigError("pipeline", "no sinks configured", nil)
	}

	return &Pipeline{
		config:  cfg,
		sources: srcs,
		sink:    sink.Multi(sinks),
		cleaner: cleaner.New(cfg.tables),
	}, nil
}

// DefaultSources returns the six catalog sources under dataDir in merge
// priority order.
func DefaultSources(dataDir string) []sources.Source {
	return sources.NewSources(
		file.CKAN(dataDir),
		file.Manual(dataDir),
		directory.HarvestedA(dataDir),
		directory.HarvestedB(dataDir),
		file.ScotGov(dataDir),
		directory.DCAT(dataDir),
	).Ordered()
}

// Sources returns the configured sources in read order.
func (p *Pipeline) Sources() []sources.Source {
	out := make([]sources.Source, len(p.sources))
	copy(out, p.sources)
	return out
}

// Tables returns the tables the cleaner uses.
func (p *Pipeline) Tables() *tables.Tables {
	return p.config.tables
}

// Run executes one full merge-and-clean pass.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	start := utc.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	logger.Info().Int("sources", len(p.sources)).Msg("Starting run")

	// Step 1: Read and merge every source; any failure aborts before output
	fetched, err := sources.NewPipeline(p.sources...).Execute(ctx)
	if err != nil {
		return nil, err
	}
	recs := fetched.Records

	// Step 2: Persist the merge before any cleaning
	if err := p.sink.Write(ctx, constants.RawSnapshot, recs); err != nil {
		return nil, errors.WrapResource("write", "snapshot", constants.RawSnapshot, err)
	}
	merged := len(recs)

	// Step 3: Clean in place
	report := p.cleaner.Clean(ctx, recs)
	if len(recs) != merged {
		return nil, errors.NewResourceError("clean", "pipeline", runID,
			fmt.Errorf("cleaner changed record count from %d to %d", merged, len(recs)))
	}

	// Step 4: Persist the cleaned catalog
	if err := p.sink.Write(ctx, constants.CleanSnapshot, recs); err != nil {
		return nil, errors.WrapResource("write", "snapshot", constants.CleanSnapshot, err)
	}

	result := newResult(runID, start, fetched.Batches, recs, report)

	logger.Info().
		Int("merged", result.Merged).
		Int("cleaned", result.Cleaned).
		Int("uncategorised", report.Uncategorised).
		Dur("duration", result.Duration).
		Msg("Run complete")

	return result, nil
}

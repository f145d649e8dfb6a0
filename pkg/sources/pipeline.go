package sources

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
)

// Pipeline fetches an ordered list of sources and merges their records.
type Pipeline struct {
	sources []Source
}

// PipelineResult contains the results of executing the source pipeline.
type PipelineResult struct {
	Batches []Batch
	Records []records.Record

	// Execution metadata
	ExecutedAt utc.Time
	Duration   time.Duration
}

// NewPipeline creates a pipeline that fetches sources in the order given.
func NewPipeline(sources ...Source) *Pipeline {
	return &Pipeline{sources: sources}
}

// Sources returns a copy of the sources in the pipeline.
func (p *Pipeline) Sources() []Source {
	out := make([]Source, len(p.sources))
	copy(out, p.sources)
	return out
}

// Fetch reads every source in order. The first failing source aborts the
// fetch; its error is wrapped in a SourceError naming it.
func (p *Pipeline) Fetch(ctx context.Context) ([]Batch, error) {
	batches := make([]Batch, 0, len(p.sources))
	for _, src := range p.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		srcCtx := logging.WithSource(ctx, src.ID().String())
		logger := logging.FromContext(srcCtx)

		recs, err := src.Fetch(srcCtx)
		if err != nil {
			logger.Error().Err(err).Msg("Source fetch failed")
			return nil, errors.WrapSource(src.ID().String(), err)
		}
		for i := range recs {
			recs[i].Source = src.ID()
		}

		stats := Stats{Records: len(recs)}
		if r, ok := src.(Reporter); ok {
			stats = r.Stats()
			stats.Records = len(recs)
		}

		logger.Info().
			Int("records", stats.Records).
			Int("files_read", stats.FilesRead).
			Int("files_skipped", stats.FilesSkipped).
			Msg("Source fetched")

		batches = append(batches, Batch{Source: src.ID(), Records: recs, Stats: stats})
	}
	return batches, nil
}

// Execute fetches every source and merges the batches.
func (p *Pipeline) Execute(ctx context.Context) (*PipelineResult, error) {
	start := utc.Now()

	batches, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		Batches:    batches,
		Records:    Merge(batches...),
		ExecutedAt: start,
		Duration:   utc.Now().Sub(start),
	}

	logging.FromContext(ctx).Info().
		Int("sources", len(batches)).
		Int("records", len(result.Records)).
		Msg("Sources merged")

	return result, nil
}

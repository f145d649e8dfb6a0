// Package directory implements sources backed by a directory of harvested
// tables, one file per harvest run.
package directory

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agentstation/datamap/internal/sources/tabular"
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/sources"
)

// Source concatenates every table of one format found directly inside a
// directory. Subdirectories are not descended into.
type Source struct {
	id      records.SourceID
	dir     string
	format  string
	mapping tabular.Mapping
	stats   sources.Stats
}

// Option configures a directory source.
type Option func(*Source)

// WithFormat sets the table format to collect. The default is CSV.
func WithFormat(format string) Option {
	return func(s *Source) {
		s.format = format
	}
}

// WithMapping sets the column mapping applied to every table.
func WithMapping(m tabular.Mapping) Option {
	return func(s *Source) {
		s.mapping = m
	}
}

// New creates a directory source.
func New(id records.SourceID, dir string, opts ...Option) *Source {
	s := &Source{
		id:     id,
		dir:    dir,
		format: tabular.FormatCSV,
		mapping: tabular.Mapping{
			Required: []string{records.ColDateUpdated},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the source ID.
func (s *Source) ID() records.SourceID {
	return s.id
}

// Stats describes the last fetch.
func (s *Source) Stats() sources.Stats {
	return s.stats
}

// Fetch scans the directory in name order. Files whose extension is missing
// or does not match the source format are skipped with a warning. A matching
// file that cannot be read aborts the fetch.
func (s *Source) Fetch(ctx context.Context) ([]records.Record, error) {
	s.stats = sources.Stats{}
	logger := logging.FromContext(ctx)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		ioErr := errors.WrapIO("scan", s.dir, err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("directory", s.dir, ioErr)
		}
		return nil, ioErr
	}

	var recs []records.Record
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable entry")
			s.stats.FilesSkipped++
			continue
		}
		if info.IsDir() {
			logger.Debug().Str("dir", path).Msg("Skipping subdirectory")
			continue
		}
		if !info.Mode().IsRegular() {
			logger.Warn().Str("file", path).Msg("Skipping non-regular file")
			s.stats.FilesSkipped++
			continue
		}
		if format := tabular.Format(entry.Name()); format != s.format {
			logger.Warn().
				Str("file", path).
				Str("expected", s.format).
				Msg("Skipping file with unrecognized extension")
			s.stats.FilesSkipped++
			continue
		}

		table, err := tabular.Read(path)
		if err != nil {
			return nil, err
		}
		batch, err := s.mapping.Records(table, s.id)
		if err != nil {
			return nil, err
		}

		logger.Debug().Str("file", path).Int("records", len(batch)).Msg("Read harvested table")
		recs = append(recs, batch...)
		s.stats.FilesRead++
	}

	s.stats.Records = len(recs)
	return recs, nil
}

// HarvestedA reads the ArcGIS hub harvest directory.
func HarvestedA(dataDir string) *Source {
	return New(records.HarvestedA, filepath.Join(dataDir, constants.HarvestedADir))
}

// HarvestedB reads the USMART harvest directory.
func HarvestedB(dataDir string) *Source {
	return New(records.HarvestedB, filepath.Join(dataDir, constants.HarvestedBDir))
}

// DCAT reads the DCAT feed harvest directory.
func DCAT(dataDir string) *Source {
	return New(records.DCAT, filepath.Join(dataDir, constants.DCATDir))
}

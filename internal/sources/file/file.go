// Package file implements sources backed by a single exported table.
package file

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

// Source reads one table file. When several candidate paths are configured
// the first that exists is read.
type Source struct {
	id      records.SourceID
	paths   []string
	mapping tabular.Mapping
	stats   sources.Stats
}

// New creates a file source reading the first existing path of paths.
func New(id records.SourceID, mapping tabular.Mapping, paths ...string) *Source {
	return &Source{id: id, paths: paths, mapping: mapping}
}

// ID returns the source ID.
func (s *Source) ID() records.SourceID {
	return s.id
}

// Stats describes the last fetch.
func (s *Source) Stats() sources.Stats {
	return s.stats
}

// Path returns the file that would be read, or "" when none exists.
func (s *Source) Path() string {
	for _, p := range s.paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// Fetch reads the table and maps its rows onto records.
func (s *Source) Fetch(ctx context.Context) ([]records.Record, error) {
	s.stats = sources.Stats{}
	if len(s.paths) == 0 {
		return nil, errors.NewConfigError(s.id.String(), "no input file configured", nil)
	}

	path := s.Path()
	if path == "" {
		_, err := os.Stat(s.paths[0])
		if err == nil {
			err = errors.New("not a regular file")
		}
		ioErr := errors.WrapIO("open", s.paths[0], err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("source file", s.paths[0], ioErr)
		}
		return nil, ioErr
	}

	logging.FromContext(ctx).Debug().Str("path", path).Msg("Reading source file")

	table, err := tabular.Read(path)
	if err != nil {
		return nil, err
	}
	recs, err := s.mapping.Records(table, s.id)
	if err != nil {
		return nil, err
	}

	s.stats = sources.Stats{Records: len(recs), FilesRead: 1}
	return recs, nil
}

// CKAN reads the CKAN catalog export.
func CKAN(dataDir string) *Source {
	return New(records.CKAN, tabular.Mapping{
		Required: []string{records.ColDateUpdated},
	}, filepath.Join(dataDir, constants.CKANFile))
}

// Manual reads the manually curated spreadsheet, preferring the CSV export
// over the workbook.
func Manual(dataDir string) *Source {
	return New(records.Manual, tabular.Mapping{
		Required: []string{records.ColDateUpdated},
	},
		filepath.Join(dataDir, constants.SheetsFile),
		filepath.Join(dataDir, constants.SheetsWorkbook),
	)
}

// ScotGov reads the government portal export. Its columns use the portal's
// own names and every dataset is published under OGL3.
func ScotGov(dataDir string) *Source {
	return New(records.ScotGov, tabular.Mapping{
		Renames: map[string]string{
			"title":        records.ColTitle,
			"category":     records.ColOriginalTags,
			"organization": records.ColOwner,
			"notes":        records.ColDescription,
			"date_created": records.ColDateCreated,
			"date_updated": records.ColDateUpdated,
			"url":          records.ColPageURL,
		},
		Fixed:    map[string]string{records.ColLicense: ScotGovLicence},
		Required: []string{records.ColTitle},
	}, filepath.Join(dataDir, constants.ScotGovFile))
}

// ScotGovLicence is the raw licence stamped on every government export record.
const ScotGovLicence = "OGL3"

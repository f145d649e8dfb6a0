package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
)

// CSVSink writes each snapshot to <dir>/<name>.csv with the canonical header.
type CSVSink struct {
	dir string
}

// NewCSVSink returns a sink writing into dir, which is created on first write.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

// Path returns the file a snapshot is written to.
func (s *CSVSink) Path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Write replaces the snapshot file atomically.
func (s *CSVSink) Write(ctx context.Context, name string, recs []records.Record) error {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}

	tempFile, err := os.CreateTemp(s.dir, name+"_*.csv.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()
	defer func() { _ = os.Remove(tempPath) }()

	if err := writeCSV(tempFile, recs); err != nil {
		_ = tempFile.Close()
		return errors.WrapIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		return errors.WrapIO("write", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", tempPath, err)
	}

	path := s.Path(name)
	if err := os.Rename(tempPath, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}

	logging.FromContext(ctx).Info().
		Str("path", path).
		Int("records", len(recs)).
		Msg("Snapshot written")
	return nil
}

func writeCSV(f *os.File, recs []records.Record) error {
	w := csv.NewWriter(f)
	if err := w.Write(records.Columns()); err != nil {
		return err
	}
	for i := range recs {
		if err := w.Write(recs[i].Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

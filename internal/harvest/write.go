package harvest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"

	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
)

// WriteCSV writes items as a table with the canonical input header.
func WriteCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)
	columns := records.InputColumns()
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, it := range items {
		rec := it.Record("")
		if err := cw.Write(rec.Row()[:len(columns)]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns a timestamped table name for a harvest run.
func FileName(prefix string, at utc.Time) string {
	return prefix + "-" + at.Format(constants.TimeFormatFilename) + ".csv"
}

// Save writes items to <dir>/<name>, creating dir if needed. The file
// appears atomically.
func Save(ctx context.Context, dir, name string, items []Item) (string, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".harvest_*.tmp")
	if err != nil {
		return "", errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()
	defer func() { _ = os.Remove(tempPath) }()

	if err := WriteCSV(tempFile, items); err != nil {
		_ = tempFile.Close()
		return "", errors.WrapIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		return "", errors.WrapIO("write", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		return "", errors.WrapIO("chmod", tempPath, err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tempPath, path); err != nil {
		return "", errors.WrapIO("rename", path, err)
	}

	logging.FromContext(ctx).Info().Str("path", path).Int("items", len(items)).Msg("Harvest saved")
	return path, nil
}

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
)

// SQLiteSink writes each snapshot into its own table of an SQLite database.
// A write drops and recreates the table inside one transaction.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapResource("open", "database", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("open", "database", path, err)
	}
	return &SQLiteSink{db: db}, nil
}

// NewSQLiteSink wraps an open database.
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

// DB returns the underlying database.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Write replaces the snapshot table.
func (s *SQLiteSink) Write(ctx context.Context, name string, recs []records.Record) error {
	table := quoteIdent(name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("write", "snapshot", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return errors.WrapResource("write", "snapshot", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return errors.WrapResource("write", "snapshot", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table))
	if err != nil {
		return errors.WrapResource("write", "snapshot", name, err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range recs {
		if _, err := stmt.ExecContext(ctx, values(i, &recs[i])...); err != nil {
			return errors.WrapResource("write", "snapshot", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapResource("write", "snapshot", name, err)
	}

	logging.FromContext(ctx).Info().
		Str("table", name).
		Int("records", len(recs)).
		Msg("Snapshot written")
	return nil
}

// columnTypes gives the SQL type of each snapshot column; unlisted columns are TEXT.
var columnTypes = map[string]string{
	records.ColDateCreated: "DATE",
	records.ColDateUpdated: "DATE",
	records.ColFileSize:    "REAL",
	records.ColNumRecords:  "REAL",
}

func createTableSQL(table string) string {
	cols := []string{`"Position" INTEGER PRIMARY KEY`}
	for _, c := range records.Columns() {
		typ, ok := columnTypes[c]
		if !ok {
			typ = "TEXT"
		}
		cols = append(cols, fmt.Sprintf("%s %s", quoteIdent(c), typ))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func insertSQL(table string) string {
	cols := append([]string{"Position"}, records.Columns()...)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quoted, ", "), placeholders)
}

// values renders a record in insert order. Null dates, numbers and the
// asset status are stored as SQL NULL. Valid dates bind as UTC timestamps;
// the raw snapshot's unparsed date text is kept as is.
func values(i int, r *records.Record) []any {
	row := r.Row()
	out := make([]any, 0, len(row)+1)
	out = append(out, i)
	for j, col := range records.Columns() {
		out = append(out, columnValue(col, row[j], r))
	}
	return out
}

func columnValue(col, text string, r *records.Record) any {
	switch col {
	case records.ColFileSize:
		return nullNumber(r.Size)
	case records.ColNumRecords:
		return nullNumber(r.RecordCount)
	case records.ColDateCreated:
		return dateValue(r.DateCreated)
	case records.ColDateUpdated:
		return dateValue(r.DateUpdated)
	case records.ColAssetStatus:
		if r.AssetStatus == nil {
			return nil
		}
	}
	return text
}

func dateValue(d records.Date) any {
	switch {
	case d.Valid():
		return d.Time()
	case d.IsNull():
		return nil
	default:
		return d.Raw()
	}
}

func nullNumber(n records.Number) any {
	if !n.Valid() {
		return nil
	}
	return n.Value()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

package tabular

import (
	"fmt"

	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/records"
)

// Mapping describes how a source's columns translate to canonical columns.
type Mapping struct {
	// Renames maps a source column name to the canonical column it fills.
	// Columns not listed are read under their canonical name.
	Renames map[string]string

	// Fixed sets canonical columns to a constant for every row, regardless
	// of what the table holds.
	Fixed map[string]string

	// Required lists canonical columns that must be present in the header.
	Required []string
}

// column returns the table column that feeds canonical.
func (m Mapping) column(t *Table, canonical string) string {
	for from, to := range m.Renames {
		if to == canonical && t.Has(from) {
			return from
		}
	}
	return canonical
}

// Validate checks that every required column is present in t.
func (m Mapping) Validate(t *Table) error {
	for _, canonical := range m.Required {
		if _, fixed := m.Fixed[canonical]; fixed {
			continue
		}
		if col := m.column(t, canonical); !t.Has(col) {
			return errors.NewParseError(t.Format, t.Name,
				fmt.Sprintf("missing required column %q", canonical), nil)
		}
	}
	return nil
}

// Records maps every row of t onto a canonical record stamped with source.
func (m Mapping) Records(t *Table, source records.SourceID) ([]records.Record, error) {
	if err := m.Validate(t); err != nil {
		return nil, err
	}

	columns := make(map[string]string)
	for _, canonical := range records.InputColumns() {
		columns[canonical] = m.column(t, canonical)
	}

	recs := make([]records.Record, t.Len())
	for row := range recs {
		recs[row] = records.FromColumns(func(canonical string) string {
			if v, ok := m.Fixed[canonical]; ok {
				return v
			}
			return t.Get(row, columns[canonical])
		}, source)
	}
	return recs, nil
}

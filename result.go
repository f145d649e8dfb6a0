package datamap

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/datamap/pkg/cleaner"
	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/sources"
)

// Result summarizes a run.
type Result struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartedAt utc.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`

	Sources []SourceResult `json:"sources" yaml:"sources"`
	Merged  int            `json:"merged" yaml:"merged"`
	Cleaned int            `json:"cleaned" yaml:"cleaned"`

	Categories map[string]int  `json:"categories" yaml:"categories"`
	Licences   map[string]int  `json:"licences" yaml:"licences"`
	Report     *cleaner.Report `json:"report" yaml:"report"`

	// Records holds the cleaned catalog.
	Records []records.Record `json:"-" yaml:"-"`
}

// SourceResult is one source's contribution to a run.
type SourceResult struct {
	Source records.SourceID `json:"source" yaml:"source"`

	sources.Stats `yaml:",inline"`
}

func newResult(runID string, start utc.Time, batches []sources.Batch, recs []records.Record, report *cleaner.Report) *Result {
	r := &Result{
		RunID:      runID,
		StartedAt:  start,
		Duration:   utc.Now().Sub(start),
		Merged:     len(recs),
		Cleaned:    len(recs),
		Categories: report.Categories,
		Licences:   report.Licences,
		Report:     report,
		Records:    recs,
	}
	for _, b := range batches {
		r.Sources = append(r.Sources, SourceResult{Source: b.Source, Stats: b.Stats})
	}
	return r
}

// SourceTotal returns the sum of per-source record counts.
func (r *Result) SourceTotal() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Records
	}
	return total
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d records from %d sources, %d uncategorised (took %v)",
		r.Cleaned, len(r.Sources), r.Report.Uncategorised, r.Duration.Round(time.Millisecond))
}

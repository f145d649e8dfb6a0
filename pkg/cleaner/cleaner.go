// Package cleaner implements the record cleaning stages: owner renaming, date
// and file type normalization, tag tidying and combination, category
// classification and licence canonicalization.
//
// Every stage is total. Bad or missing values resolve to a defined fallback
// and never produce an error, so a batch always comes out with exactly the
// records that went in, in the same order.
package cleaner

import (
	"context"
	"strings"

	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/tables"
)

// Stage names, in execution order.
const (
	StageOwner    = "owner"
	StageDate     = "date"
	StageFileType = "file_type"
	StageTidy     = "tag_tidy"
	StageCombine  = "tag_combine"
	StageClassify = "classify"
	StageLicence  = "licence"
)

// Report counts the fallbacks each stage applied.
type Report struct {
	OwnersRenamed  int `json:"owners_renamed" yaml:"owners_renamed"`
	OwnersUnmapped int `json:"owners_unmapped" yaml:"owners_unmapped"`
	DatesNull      int `json:"dates_null" yaml:"dates_null"`
	Uncategorised  int `json:"uncategorised" yaml:"uncategorised"`
	NoLicence      int `json:"no_licence" yaml:"no_licence"`
	CustomLicence  int `json:"custom_licence" yaml:"custom_licence"`

	Categories map[string]int `json:"categories" yaml:"categories"`
	Licences   map[string]int `json:"licences" yaml:"licences"`
}

func newReport() *Report {
	return &Report{
		Categories: make(map[string]int),
		Licences:   make(map[string]int),
	}
}

// Cleaner runs the cleaning stages against a fixed set of tables.
type Cleaner struct {
	tables     *tables.Tables
	classifier *Classifier
}

// New returns a cleaner over t.
func New(t *tables.Tables) *Cleaner {
	return &Cleaner{
		tables:     t,
		classifier: NewClassifier(t.Taxonomy),
	}
}

type stage struct {
	name  string
	apply func(*records.Record, *Report)
}

func (c *Cleaner) stages() []stage {
	return []stage{
		{StageOwner, c.owner},
		{StageDate, c.date},
		{StageFileType, c.fileType},
		{StageTidy, c.tidy},
		{StageCombine, c.combine},
		{StageClassify, c.classify},
		{StageLicence, c.licence},
	}
}

// Clean applies every stage, in order, to all records in place. Each stage
// completes over the whole batch before the next starts.
func (c *Cleaner) Clean(ctx context.Context, recs []records.Record) *Report {
	report := newReport()
	for _, s := range c.stages() {
		for i := range recs {
			s.apply(&recs[i], report)
		}
		logging.FromContext(logging.WithStage(ctx, s.name)).Debug().
			Int("records", len(recs)).
			Msg("Cleaner stage complete")
	}
	return report
}

func (c *Cleaner) owner(rec *records.Record, report *Report) {
	renamed := RenameOwner(c.tables.Owners, rec.Owner)
	if renamed != rec.Owner {
		report.OwnersRenamed++
	} else if _, ok := c.tables.Owners.Lookup(rec.Owner); !ok {
		report.OwnersUnmapped++
	}
	rec.Owner = renamed
}

func (c *Cleaner) date(rec *records.Record, report *Report) {
	rec.DateCreated = NormalizeDate(rec.DateCreated)
	rec.DateUpdated = NormalizeDate(rec.DateUpdated)
	if !rec.DateUpdated.Valid() {
		report.DatesNull++
	}
}

func (c *Cleaner) fileType(rec *records.Record, _ *Report) {
	rec.FileType = NormalizeFileType(rec.FileType)
}

func (c *Cleaner) tidy(rec *records.Record, _ *Report) {
	rec.OriginalTags = Tidy(rec.OriginalTags)
	rec.ManualTags = Tidy(rec.ManualTags)
}

func (c *Cleaner) combine(rec *records.Record, _ *Report) {
	rec.CombinedTags = Combine(rec.OriginalTags, rec.ManualTags)
}

func (c *Cleaner) classify(rec *records.Record, report *Report) {
	categories := c.classifier.Categories(Terms(rec.CombinedTags))
	rec.ODSCategories = joinList(categories)
	for _, cat := range categories {
		report.Categories[cat]++
	}
	if len(categories) == 1 && categories[0] == c.tables.Taxonomy.Fallback() {
		report.Uncategorised++
	}
}

func (c *Cleaner) licence(rec *records.Record, report *Report) {
	rec.License = CanonicalizeLicence(c.tables.Licences, rec.License)
	switch {
	case rec.License == NoLicence:
		report.NoLicence++
	case strings.HasPrefix(rec.License, CustomLicencePrefix):
		report.CustomLicence++
		report.Licences[CustomLicencePrefix+"*"]++
		return
	}
	report.Licences[rec.License]++
}

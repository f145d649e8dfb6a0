package cleaner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentstation/datamap/pkg/cleaner"
	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/tables"
)

// tagString builds a raw tag string from generated terms, mixing separators,
// padding and placeholder tokens.
func tagString(terms []string) string {
	var b strings.Builder
	for i, term := range terms {
		switch i % 4 {
		case 0:
			b.WriteString(" " + strings.ToUpper(term) + " ")
		case 1:
			b.WriteString("nan")
		case 2:
			b.WriteString(term + ",")
		default:
			b.WriteString(term)
		}
		b.WriteString(";")
	}
	return b.String()
}

func wellFormed(tags string) bool {
	seen := make(map[string]bool)
	for _, term := range cleaner.Terms(tags) {
		if term == "" || term == "nan" || term != strings.TrimSpace(term) || term != strings.ToLower(term) {
			return false
		}
		if seen[term] {
			return false
		}
		seen[term] = true
	}
	return true
}

func TestTagProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("tidy is idempotent", prop.ForAll(
		func(terms []string) bool {
			once := cleaner.Tidy(tagString(terms))
			return cleaner.Tidy(once) == once
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("combined tags are lowercase, trimmed and distinct", prop.ForAll(
		func(original, manual []string) bool {
			return wellFormed(cleaner.Combine(tagString(original), tagString(manual)))
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("combine is a superset of both sides", prop.ForAll(
		func(original, manual []string) bool {
			combined := make(map[string]bool)
			for _, term := range cleaner.Terms(cleaner.Combine(tagString(original), tagString(manual))) {
				combined[term] = true
			}
			for _, side := range []string{tagString(original), tagString(manual)} {
				for _, term := range cleaner.Terms(cleaner.Tidy(side)) {
					if !combined[term] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestCleanProperties(t *testing.T) {
	tbl := tables.Default()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("clean preserves count and fills every record", prop.ForAll(
		func(tags, licences []string) bool {
			recs := make([]records.Record, len(tags))
			for i := range recs {
				recs[i].Title = tags[i]
				recs[i].OriginalTags = tagString(tags[i:])
				if i < len(licences) {
					recs[i].License = licences[i]
				}
			}

			cleaner.New(tbl).Clean(context.Background(), recs)

			if len(recs) != len(tags) {
				return false
			}
			for i, rec := range recs {
				if rec.Title != tags[i] || rec.ODSCategories == "" || rec.AssetStatus != nil {
					return false
				}
				if !wellFormed(rec.CombinedTags) {
					return false
				}
				_, known := tbl.Licences.Lookup(rec.License)
				canonical := false
				for _, v := range tbl.Licences.Map() {
					canonical = canonical || v == rec.License
				}
				if !canonical && !known && rec.License != cleaner.NoLicence &&
					!strings.HasPrefix(rec.License, cleaner.CustomLicencePrefix) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

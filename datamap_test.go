package datamap_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datamap"
	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/sink"
	"github.com/agentstation/datamap/pkg/tables"
)

const canonicalHeader = "Title,Owner,PageURL,AssetURL,DateCreated,DateUpdated,FileSize,FileType,NumRecords,OriginalTags,ManualTags,License,Description\n"

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), constants.DirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))
}

// seedDataDir lays out one record per source plus an extra harvested file
// and a stray extensionless file.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write(t, filepath.Join(dir, constants.CKANFile), canonicalHeader+
		"Car parks,Aberdeen,https://ckan.example/parks,,,2021-06-30,,csv,,Parking;Roads,roads,uk-ogl,Spaces\n"+
		"Budget,Dundee,https://ckan.example/budget,,,not-a-date,,xlsx,,Finance,,,\n")
	write(t, filepath.Join(dir, constants.SheetsFile), canonicalHeader+
		"Allotments,Angus,,,,2020-02-02,,,,nan,food,Foo,\n")
	write(t, filepath.Join(dir, constants.HarvestedADir, "renfrew.csv"), canonicalHeader+
		"Schools,Renfrewshire Council,,,2019-01-01,2020-01-01,100,CSV,5,Schools;,,,\n")
	write(t, filepath.Join(dir, constants.HarvestedADir, "README"), "not a table\n")
	write(t, filepath.Join(dir, constants.HarvestedBDir, "usmart.csv"), canonicalHeader+
		"Bins,SEPA,,,,2022-03-03T10:00:00+00:00,,json,,Waste,,,\n")
	write(t, filepath.Join(dir, constants.ScotGovFile),
		"title,category,organization,notes,date_created,date_updated,url\n"+
			"Crime,Public Safety,Scottish Government,Recorded crime,2018-01-01,2021-07-07,https://gov.example/crime\n")
	write(t, filepath.Join(dir, constants.DCATDir, "feed.csv"), canonicalHeader+
		"Trees,Stirling,,,,,,,,Unknown-Tag,,,\n")

	return dir
}

func readSnapshot(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun(t *testing.T) {
	dataDir := seedDataDir(t)
	outDir := filepath.Join(t.TempDir(), "out")

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	p, err := datamap.New(datamap.WithDataDir(dataDir), datamap.WithOutputDir(outDir))
	require.NoError(t, err)

	result, err := p.Run(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 7, result.Merged)
	assert.Equal(t, result.Merged, result.Cleaned)
	assert.Equal(t, result.Merged, result.SourceTotal())

	require.Len(t, result.Sources, 6)
	wantOrder := records.SourceIDs()
	for i, s := range result.Sources {
		assert.Equal(t, wantOrder[i], s.Source)
	}
	assert.Equal(t, 1, result.Sources[2].FilesSkipped)

	raw := readSnapshot(t, filepath.Join(outDir, constants.RawSnapshot+".csv"))
	clean := readSnapshot(t, filepath.Join(outDir, constants.CleanSnapshot+".csv"))
	require.Len(t, raw, 8)
	require.Len(t, clean, 8)
	assert.Equal(t, records.Columns(), clean[0])

	// Raw snapshot keeps source values untouched.
	assert.Equal(t, "Aberdeen", raw[1][1])
	assert.Equal(t, "Parking;Roads", raw[1][9])
	assert.Equal(t, "uk-ogl", raw[1][11])

	byTitle := make(map[string]records.Record)
	for _, r := range result.Records {
		byTitle[r.Title] = r
	}

	parks := byTitle["Car parks"]
	assert.Equal(t, "Aberdeen City Council", parks.Owner)
	assert.Equal(t, "parking;roads", parks.CombinedTags)
	assert.Equal(t, "Housing and Estates;Transportation", parks.ODSCategories)
	assert.Equal(t, "Open Government Licence v3.0", parks.License)
	assert.Equal(t, "CSV", parks.FileType)
	assert.Equal(t, records.CKAN, parks.Source)

	budget := byTitle["Budget"]
	assert.False(t, budget.DateUpdated.Valid())
	assert.Equal(t, "Budget / Finance", budget.ODSCategories)
	assert.Equal(t, "No licence", budget.License)

	allotments := byTitle["Allotments"]
	assert.Equal(t, "food", allotments.CombinedTags)
	assert.Equal(t, "Food", allotments.ODSCategories)
	assert.Equal(t, "Custom licence: Foo", allotments.License)

	assert.Equal(t, "Scottish Environment Protection Agency", byTitle["Bins"].Owner)
	assert.Equal(t, "2022-03-03", byTitle["Bins"].DateUpdated.String())
	assert.Equal(t, "Open Government Licence v3.0", byTitle["Crime"].License)
	assert.Equal(t, records.ScotGov, byTitle["Crime"].Source)
	assert.Equal(t, "Uncategorised", byTitle["Trees"].ODSCategories)

	assert.Equal(t, 1, result.Report.Uncategorised)
	assert.Contains(t, result.Summary(), "7 records from 6 sources")
	assert.True(t, tl.Contains("README"))
	assert.True(t, tl.Contains(result.RunID))
}

func TestRunMissingSourceWritesNothing(t *testing.T) {
	dataDir := seedDataDir(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dataDir, constants.DCATDir)))
	outDir := filepath.Join(t.TempDir(), "out")

	logging.DisableLoggingForTest(t)

	p, err := datamap.New(datamap.WithDataDir(dataDir), datamap.WithOutputDir(outDir))
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var srcErr *errors.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "dcat", srcErr.Source)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCustomTablesAndSinks(t *testing.T) {
	dataDir := seedDataDir(t)

	custom, err := tables.Parse([]byte(`
fallback_category: Other
taxonomy:
  - name: Trees
    keywords: [unknown-tag]
owners: {}
licences: {}
`), "custom.yaml")
	require.NoError(t, err)

	snapshots := make(map[string]int)
	capture := sink.Func(func(_ context.Context, name string, recs []records.Record) error {
		snapshots[name] = len(recs)
		return nil
	})

	logging.DisableLoggingForTest(t)

	p, err := datamap.New(
		datamap.WithDataDir(dataDir),
		datamap.WithTables(custom),
		datamap.WithSinks(capture),
	)
	require.NoError(t, err)
	assert.Same(t, custom, p.Tables())
	assert.Len(t, p.Sources(), 6)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{constants.RawSnapshot: 7, constants.CleanSnapshot: 7}, snapshots)
	assert.Equal(t, 1, result.Categories["Trees"])
	assert.Equal(t, 6, result.Categories["Other"])

	_, statErr := os.Stat(filepath.Join(dataDir, constants.CleanSnapshot+".csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewValidation(t *testing.T) {
	_, err := datamap.New(datamap.WithDataDir(""))
	assert.True(t, errors.IsValidationError(err))

	_, err = datamap.New(datamap.WithTables(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = datamap.New(datamap.WithSources())
	assert.True(t, errors.IsValidationError(err))

	_, err = datamap.New(datamap.WithSinks())
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDefaultSourcesOrder(t *testing.T) {
	srcs := datamap.DefaultSources("data")
	require.Len(t, srcs, 6)
	for i, id := range records.SourceIDs() {
		assert.Equal(t, id, srcs[i].ID())
	}
}

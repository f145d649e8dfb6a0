package tabular_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/datamap/internal/sources/tabular"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/records"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"data.csv", tabular.FormatCSV},
		{"DATA.CSV", tabular.FormatCSV},
		{"dir/sheet.xlsx", tabular.FormatXLSX},
		{"archive.tar.csv", tabular.FormatCSV},
		{"README", ""},
		{"trailingdot.", ""},
		{".hidden", ""},
		{"notes.txt", ""},
		{"dir.csv/inner", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tabular.Format(tt.name))
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFTitle, Owner ,DateUpdated\n" +
		"Roads,Dundee,2021-01-01\n" +
		"\n" +
		"Short\n" +
		",,\n" +
		"\"Quoted, title\",Angus,\n" +
		"Bins,The 12\" pipe survey,2021-01-01\n"

	table, err := tabular.ReadCSV(strings.NewReader(input), "in.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "Owner", "DateUpdated"}, table.Header)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, "Roads", table.Get(0, "Title"))
	assert.Equal(t, "Dundee", table.Get(0, "Owner"))
	assert.Equal(t, "", table.Get(1, "Owner"))
	assert.Equal(t, "Quoted, title", table.Get(2, "Title"))
	assert.Equal(t, `The 12" pipe survey`, table.Get(3, "Owner"))
	assert.Equal(t, "2021-01-01", table.Get(3, "DateUpdated"))
	assert.Equal(t, "", table.Get(0, "Missing"))
	assert.Equal(t, "", table.Get(9, "Title"))
}

func TestReadCSVErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := tabular.ReadCSV(strings.NewReader(""), "empty.csv")
		var parseErr *errors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "empty.csv", parseErr.File)
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := tabular.ReadCSV(iotest.ErrReader(errors.New("disk read failed")), "bad.csv")
		var parseErr *errors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "bad.csv", parseErr.File)
	})
}

func writeWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheetName := "Sheet1"
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, val))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := writeWorkbook(t, [][]string{
		{"Title", "Owner", "DateUpdated", "ManualTags"},
		{"Bins", "Stirling", "2020-05-01", "waste"},
		{"Parks", "Perth"},
	})

	table, err := tabular.ReadXLSX(bytes.NewReader(data), "sheet.xlsx")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "waste", table.Get(0, "ManualTags"))
	assert.Equal(t, "Perth", table.Get(1, "Owner"))
	assert.Equal(t, "", table.Get(1, "ManualTags"))
	assert.Equal(t, tabular.FormatXLSX, table.Format)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Title\nx\n"), 0o644))
	table, err := tabular.Read(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	xlsxPath := filepath.Join(dir, "b.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, writeWorkbook(t, [][]string{{"Title"}, {"y"}}), 0o644))
	table, err = tabular.Read(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "y", table.Get(0, "Title"))

	_, err = tabular.Read(filepath.Join(dir, "missing.csv"))
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	_, err = tabular.Read(filepath.Join(dir, "noext"))
	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestMappingRecords(t *testing.T) {
	input := "title,organization,category,date_updated,url,FileSize,NumRecords\n" +
		"Schools,Angus,Education,2022-03-04,https://example.org/s,12.5,n/a\n"
	table, err := tabular.ReadCSV(strings.NewReader(input), "scotgov.csv")
	require.NoError(t, err)

	mapping := tabular.Mapping{
		Renames: map[string]string{
			"title":        records.ColTitle,
			"organization": records.ColOwner,
			"category":     records.ColOriginalTags,
			"date_updated": records.ColDateUpdated,
			"url":          records.ColPageURL,
		},
		Fixed:    map[string]string{records.ColLicense: "OGL3"},
		Required: []string{records.ColTitle, records.ColLicense},
	}

	recs, err := mapping.Records(table, records.ScotGov)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "Schools", rec.Title)
	assert.Equal(t, "Angus", rec.Owner)
	assert.Equal(t, "Education", rec.OriginalTags)
	assert.Equal(t, "2022-03-04", rec.DateUpdated.Raw())
	assert.Equal(t, "https://example.org/s", rec.PageURL)
	assert.Equal(t, "OGL3", rec.License)
	assert.Equal(t, records.ScotGov, rec.Source)
	assert.True(t, rec.Size.Valid())
	assert.Equal(t, 12.5, rec.Size.Value())
	assert.False(t, rec.RecordCount.Valid())
	assert.Equal(t, "", rec.Description)
}

func TestMappingRequiredColumn(t *testing.T) {
	table, err := tabular.ReadCSV(strings.NewReader("Title,Owner\nx,y\n"), "ckan_output.csv")
	require.NoError(t, err)

	mapping := tabular.Mapping{Required: []string{records.ColDateUpdated}}
	_, err = mapping.Records(table, records.CKAN)
	require.Error(t, err)

	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "ckan_output.csv", parseErr.File)
	assert.Contains(t, parseErr.Message, "DateUpdated")
}

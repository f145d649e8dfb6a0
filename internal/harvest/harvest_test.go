package harvest_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datamap/internal/harvest"
	"github.com/agentstation/datamap/internal/sources/directory"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/records"
)

// pagedServer serves three pages linked through meta.next.
func pagedServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"data":[{"id":"1","attributes":{"name":"Bins","source":"Aberdeen","created":1577836800000,"modified":1625011200000,"size":2048,"type":"CSV","recordCount":10,"tags":["Waste","Recycling"],"searchDescription":"Bin\nday"},"links":{"itemPage":"https://hub.example/bins"}}],"meta":{"next":"%s/search?page=2"}}`, srv.URL)
		case "2":
			fmt.Fprintf(w, `{"data":[{"id":"2","attributes":{"name":"Roads","source":"Dundee","tags":[]}}],"meta":{"next":"%s/search?page=3"}}`, srv.URL)
		case "3":
			fmt.Fprint(w, `{"data":[{"id":"3","attributes":{"name":"Parks","modified":null}}],"meta":{"next":""}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHarvestFollowsNext(t *testing.T) {
	srv := pagedServer(t)

	items, err := harvest.NewClient().Harvest(context.Background(), srv.URL+"/search")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Bins", items[0].Attributes.Name)
	assert.Equal(t, "Roads", items[1].Attributes.Name)
	assert.Equal(t, "Parks", items[2].Attributes.Name)
}

func TestHarvestStopsOnRepeatedURL(t *testing.T) {
	var calls int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprintf(w, `{"data":[{"id":"x"}],"meta":{"next":"%s/loop"}}`, srv.URL)
	}))
	defer srv.Close()

	items, err := harvest.NewClient().Harvest(context.Background(), srv.URL+"/loop")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, calls)
}

func TestHarvestErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := harvest.NewClient().Harvest(context.Background(), srv.URL)
		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.True(t, errors.IsUnavailable(err))
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := harvest.NewClient().Harvest(context.Background(), srv.URL)
		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.False(t, errors.IsUnavailable(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := harvest.NewClient().Harvest(context.Background(), url)
		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Zero(t, apiErr.StatusCode)
		assert.NotNil(t, apiErr.Unwrap())
		assert.True(t, errors.IsUnavailable(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"data":[`)
		}))
		defer srv.Close()

		_, err := harvest.NewClient().Harvest(context.Background(), srv.URL)
		var parseErr *errors.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}

func TestItemRecord(t *testing.T) {
	created := int64(1577836800000)
	size := 2048.0
	item := harvest.Item{
		Attributes: harvest.Attributes{
			Name:              "Bins",
			Source:            "Aberdeen",
			Created:           &created,
			Size:              &size,
			Type:              "CSV",
			Tags:              []string{"Waste", "Recycling"},
			SearchDescription: "Line\r\none\ntwo",
		},
		Links: harvest.Links{ItemPage: "https://hub.example/bins"},
	}

	rec := item.Record(records.HarvestedA)
	assert.Equal(t, "Bins", rec.Title)
	assert.Equal(t, "Aberdeen", rec.Owner)
	assert.Equal(t, "2020-01-01", rec.DateCreated.String())
	assert.True(t, rec.DateUpdated.IsNull())
	assert.Equal(t, "2048", rec.Size.String())
	assert.False(t, rec.RecordCount.Valid())
	assert.Equal(t, "Waste;Recycling", rec.OriginalTags)
	assert.Equal(t, "Line one two", rec.Description)
	assert.Equal(t, records.HarvestedA, rec.Source)
}

func TestWriteCSV(t *testing.T) {
	srv := pagedServer(t)
	items, err := harvest.NewClient().Harvest(context.Background(), srv.URL+"/search")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, harvest.WriteCSV(&buf, items))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, records.InputColumns(), rows[0])
	assert.Equal(t, []string{
		"Bins", "Aberdeen", "https://hub.example/bins", "", "2020-01-01", "2021-06-30",
		"2048", "CSV", "10", "Waste;Recycling", "", "", "Bin day",
	}, rows[1])
	assert.Equal(t, "", rows[3][5])
}

func TestSaveFeedsDirectorySource(t *testing.T) {
	srv := pagedServer(t)
	items, err := harvest.NewClient().Harvest(context.Background(), srv.URL+"/search")
	require.NoError(t, err)

	dir := t.TempDir()
	name := harvest.FileName("arcgis", utc.New(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, "arcgis-20240301-123000.csv", name)

	path, err := harvest.Save(context.Background(), dir, name, items)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	recs, err := directory.New(records.HarvestedA, dir).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Roads", recs[1].Title)
	assert.Equal(t, "2021-06-30", recs[0].DateUpdated.Raw())
}

// Package harvest pages through a hub search API and stages the results as a
// table in the canonical input shape, ready for a directory source to read.
package harvest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/datamap/pkg/constants"
	"github.com/agentstation/datamap/pkg/errors"
	"github.com/agentstation/datamap/pkg/logging"
	"github.com/agentstation/datamap/pkg/records"
)

// DefaultURL searches the ArcGIS hub for open datasets of the configured groups.
const DefaultURL = "https://opendata.arcgis.com/api/v3/search?catalog[groupIds]=any(79dc9ae7552e4782bf66dadbdf049a0d,bcaad01ef27a4457b9c9406818eaca5d)"

const serviceName = "hub search"

// Item is one dataset in a search response.
type Item struct {
	ID         string     `json:"id"`
	Attributes Attributes `json:"attributes"`
	Links      Links      `json:"links"`
}

// Attributes holds the dataset metadata of an item.
type Attributes struct {
	Name              string   `json:"name"`
	Source            string   `json:"source"`
	Created           *int64   `json:"created"`  // epoch milliseconds
	Modified          *int64   `json:"modified"` // epoch milliseconds
	Size              *float64 `json:"size"`
	Type              string   `json:"type"`
	RecordCount       *float64 `json:"recordCount"`
	Tags              []string `json:"tags"`
	SearchDescription string   `json:"searchDescription"`
}

// Links holds an item's links.
type Links struct {
	ItemPage string `json:"itemPage"`
}

// Page is one search response.
type Page struct {
	Data []Item `json:"data"`
	Meta Meta   `json:"meta"`
}

// Meta carries pagination state.
type Meta struct {
	Next string `json:"next"`
}

// Client fetches search pages sequentially. It does not retry.
type Client struct {
	HTTP *http.Client
}

// NewClient creates a client with the default HTTP timeout.
func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

// Harvest follows meta.next from startURL until it is absent or empty and
// returns every item in page order. A page URL seen twice ends the walk.
func (c *Client) Harvest(ctx context.Context, startURL string) ([]Item, error) {
	logger := logging.FromContext(ctx)

	var items []Item
	seen := make(map[string]bool)
	url := startURL
	for url != "" && !seen[url] {
		seen[url] = true

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Data...)

		logger.Debug().Str("url", url).Int("items", len(page.Data)).Msg("Fetched search page")
		url = page.Meta.Next
	}

	logger.Info().Int("items", len(items)).Int("pages", len(seen)).Msg("Harvest complete")
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.WrapAPI(serviceName, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &errors.APIError{
			Service:    serviceName,
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.WrapParse("json", url, err)
	}
	return &page, nil
}

// Record converts an item to a canonical record. Missing timestamps stay
// empty and newlines in the description become spaces.
func (it Item) Record(source records.SourceID) records.Record {
	a := it.Attributes
	return records.Record{
		Title:        a.Name,
		Owner:        a.Source,
		PageURL:      it.Links.ItemPage,
		DateCreated:  epochDate(a.Created),
		DateUpdated:  epochDate(a.Modified),
		Size:         optionalNumber(a.Size),
		FileType:     a.Type,
		RecordCount:  optionalNumber(a.RecordCount),
		OriginalTags: strings.Join(a.Tags, constants.ListSeparator),
		Description:  strings.ReplaceAll(strings.ReplaceAll(a.SearchDescription, "\r\n", " "), "\n", " "),
		Source:       source,
	}
}

func epochDate(ms *int64) records.Date {
	if ms == nil {
		return records.Date{}
	}
	return records.NewDate(utc.FromUnixMilli(*ms).Time())
}

func optionalNumber(v *float64) records.Number {
	if v == nil {
		return records.Number{}
	}
	return records.NewNumber(*v)
}

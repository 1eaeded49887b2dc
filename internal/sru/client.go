// Package sru queries the library services platform's SRU search
// index and converts responses into MARC records and holdings items.
package sru

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/uclalibrary/ftva-etl/internal/holdings"
	"github.com/uclalibrary/ftva-etl/internal/marc"
)

// DefaultBaseURL is the production SRU endpoint for the catalog.
const DefaultBaseURL = "https://ucla.alma.exlibrisgroup.com/view/sru/01UCS_LAL"

// FTVALibraryCode identifies FTVA holdings in availability fields.
const FTVALibraryCode = "ftva"

// callNumberIndex is the SRU index used for call-number searches.
const callNumberIndex = "alma.PermanentCallNumber"

// Client is an SRU search client. Requests are rate limited so batch
// runs stay within the platform's API allowance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an SRU client for the given endpoint, or the
// production endpoint when baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// SearchByCallNumber fetches the bib records whose permanent call
// number matches the search term.
func (c *Client) SearchByCallNumber(ctx context.Context, callNumber string) ([]marc.Record, error) {
	body, err := c.search(ctx, callNumberIndex, callNumber)
	if err != nil {
		return nil, err
	}
	return marc.ParseSRUResponse(body)
}

// search issues one searchRetrieve request against the given index.
func (c *Client) search(ctx context.Context, index, term string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Terms with spaces must be phrase-quoted or the index treats them
	// as separate words.
	if strings.Contains(term, " ") {
		term = fmt.Sprintf("%q", term)
	}

	params := url.Values{}
	params.Set("version", "1.2")
	params.Set("operation", "searchRetrieve")
	params.Set("recordSchema", "marcxml")
	params.Set("query", fmt.Sprintf("%s=%s", index, term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRU request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query SRU endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SRU endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRU response: %w", err)
	}
	return body, nil
}

// HoldingsItems converts a bib record's AVA availability fields into
// holdings items. There is one AVA field per holdings record; $b is
// the library code and $d the call number, which doubles as the FTVA
// inventory number.
func HoldingsItems(rec *marc.Record) []holdings.Item {
	var items []holdings.Item
	for _, field := range rec.Fields("AVA") {
		callNumber := field.First("d")
		if callNumber == "" {
			continue
		}
		items = append(items, holdings.Item{
			InventoryNumber: callNumber,
			CallNumber:      callNumber,
			Location:        strings.ToLower(field.First("b")),
		})
	}
	return items
}

// FilterByLocation keeps only the items belonging to one library
// collection.
func FilterByLocation(items []holdings.Item, library string) []holdings.Item {
	var filtered []holdings.Item
	for _, item := range items {
		if item.Location == library {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Searcher adapts the client into the reconciler's refinement search:
// query the call-number index, flatten every returned record's
// holdings, and keep items inside the scope's library collection.
func (c *Client) Searcher() holdings.SearchFunc {
	return func(ctx context.Context, query string, scope holdings.Scope) ([]holdings.Item, error) {
		records, err := c.SearchByCallNumber(ctx, query)
		if err != nil {
			return nil, err
		}
		var items []holdings.Item
		for i := range records {
			items = append(items, HoldingsItems(&records[i])...)
		}
		if scope.Library != "" {
			items = FilterByLocation(items, scope.Library)
		}
		return items, nil
	}
}

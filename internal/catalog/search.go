package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cardtrackapp/cardtrack-server/internal/domain"
	"github.com/cardtrackapp/cardtrack-server/internal/errors"
)

// Sort is the ordering applied to a catalog search.
type Sort struct {
	Key       domain.SortKey
	Direction domain.SortDirection
}

// DefaultSort matches the catalog's default ordering.
var DefaultSort = Sort{Key: domain.SortReleased, Direction: domain.DirAuto}

// Search resolves a query and sort specification into the ordered card
// sequence the catalog returns for it.
//
// An explicit empty-result signal from the provider (HTTP 404) maps to
// errors.ErrNoResults; any other non-success response maps to
// errors.ErrCatalogUnavailable.
func (c *Client) Search(ctx context.Context, query string, sort Sort) ([]domain.Card, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if sort.Key == "" {
		sort.Key = domain.SortReleased
	}
	if sort.Direction == "" {
		sort.Direction = domain.DirAuto
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("order", string(sort.Key))
	params.Set("dir", string(sort.Direction))

	searchURL := c.baseURL + "/cards/search?" + params.Encode()

	if c.logger != nil {
		c.logger.Debug("searching catalog", "query", query, "order", sort.Key, "dir", sort.Direction)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.CatalogUnavailable("card catalog unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NoResults("no cards found")
	case resp.StatusCode != http.StatusOK:
		return nil, errors.CatalogUnavailable(fmt.Sprintf("card catalog returned status %d", resp.StatusCode))
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, errors.CatalogUnavailable("malformed catalog response").WithCause(err)
	}

	cards := make([]domain.Card, 0, len(searchResp.Data))
	for i := range searchResp.Data {
		w := &searchResp.Data[i]
		small, normal := w.images()
		cards = append(cards, domain.Card{
			ID:          w.ID,
			Name:        w.Name,
			TypeLine:    w.TypeLine,
			Set:         w.Set,
			PriceUSD:    w.Prices.USD,
			ImageSmall:  small,
			ImageNormal: normal,
			CatalogURI:  w.ScryfallURI,
		})
	}

	if c.logger != nil {
		c.logger.Debug("catalog search results", "query", query, "count", len(cards))
	}

	return cards, nil
}

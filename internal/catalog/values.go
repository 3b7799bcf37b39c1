package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"slices"
)

// BaseTypes are always included in the autocomplete set.
var BaseTypes = []string{"Creature", "Artifact", "Enchantment", "Instant", "Sorcery", "Land", "Planeswalker"}

// FallbackTypes is the small built-in set used when every catalog endpoint fails.
var FallbackTypes = []string{"Artifact", "Creature", "Enchantment"}

// DefaultTypeCategories are the catalog endpoints consulted for the
// type/subtype autocomplete source.
var DefaultTypeCategories = []string{
	"creature-types",
	"artifact-types",
	"enchantment-types",
	"land-types",
	"planeswalker-types",
	"spell-types",
}

// CatalogValues returns the union of the named catalog categories plus the
// base types, sorted and deduplicated. Best-effort: individual category
// failures are skipped, and if nothing at all could be fetched the built-in
// fallback set is returned instead of an error.
func (c *Client) CatalogValues(ctx context.Context, categories []string) []string {
	seen := make(map[string]bool)
	fetchedAny := false

	for _, category := range categories {
		values, err := c.fetchCatalog(ctx, category)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("catalog category fetch failed", "category", category, "error", err)
			}
			continue
		}
		fetchedAny = true
		for _, v := range values {
			seen[v] = true
		}
	}

	if !fetchedAny {
		return slices.Clone(FallbackTypes)
	}

	for _, t := range BaseTypes {
		seen[t] = true
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// fetchCatalog fetches a single catalog category.
func (c *Client) fetchCatalog(ctx context.Context, category string) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/catalog/"+category, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var catalogResp catalogResponse
	if err := json.UnmarshalRead(resp.Body, &catalogResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return catalogResp.Data, nil
}

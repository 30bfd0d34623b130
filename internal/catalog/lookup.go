package catalog

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/searchutil"
)

type listingNames []models.Listing

func (l listingNames) String(i int) string {
	return l[i].Name
}

func (l listingNames) Len() int {
	return len(l)
}

// SearchListings is the in-memory counterpart of the backend search endpoint.
// Location narrows by substring; name ranks the rest by subsequence match,
// best first.
func (c *Catalog) SearchListings(ctx context.Context, name string, location string) ([]models.Listing, error) {
	listings, err := c.Listings(ctx)
	if err != nil {
		return nil, err
	}

	trimmedLocation := strings.TrimSpace(location)
	candidates := make(listingNames, 0, len(listings))
	for _, listing := range listings {
		if trimmedLocation != "" && !searchutil.ContainsFold(listing.Location, trimmedLocation) {
			continue
		}
		candidates = append(candidates, listing)
	}

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return candidates, nil
	}

	matches := fuzzy.FindFrom(trimmedName, candidates)
	results := make([]models.Listing, 0, len(matches))
	for _, match := range matches {
		results = append(results, candidates[match.Index])
	}
	return results, nil
}

// FetchCategories serves the cached categories so the catalog can stand in
// for the backend as a suggestion source.
func (c *Catalog) FetchCategories(ctx context.Context) ([]models.Category, error) {
	return c.Categories(ctx)
}

func (c *Catalog) FetchListings(ctx context.Context) ([]models.Listing, error) {
	return c.Listings(ctx)
}

type Searcher interface {
	SearchListings(ctx context.Context, name string, location string) ([]models.Listing, error)
}

// RemoteSearch sends name and location searches to searcher while the full
// listing set keeps coming from the catalog cache.
type RemoteSearch struct {
	catalog  *Catalog
	searcher Searcher
}

func (c *Catalog) WithRemoteSearch(searcher Searcher) *RemoteSearch {
	return &RemoteSearch{catalog: c, searcher: searcher}
}

func (r *RemoteSearch) SearchListings(ctx context.Context, name string, location string) ([]models.Listing, error) {
	return r.searcher.SearchListings(ctx, name, location)
}

func (r *RemoteSearch) FetchListings(ctx context.Context) ([]models.Listing, error) {
	return r.catalog.Listings(ctx)
}

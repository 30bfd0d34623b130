package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/fuzzy"
	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/searchutil"
)

type ListingSource interface {
	SearchListings(ctx context.Context, name string, location string) ([]models.Listing, error)
	FetchListings(ctx context.Context) ([]models.Listing, error)
}

type CategorySource interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

type Aggregator struct {
	listings   ListingSource
	categories CategorySource
	tuning     config.Tuning
	logger     *slog.Logger
}

func NewAggregator(listings ListingSource, categories CategorySource, tuning config.Tuning, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		listings:   listings,
		categories: categories,
		tuning:     tuning.Normalize(),
		logger:     logger,
	}
}

func (a *Aggregator) Tuning() config.Tuning {
	return a.tuning
}

// GetSuggestions returns listing suggestions followed by category
// suggestions. Both lookups run together and either failing fails the call.
func (a *Aggregator) GetSuggestions(ctx context.Context, query string, location string) ([]models.Suggestion, error) {
	trimmedQuery := strings.TrimSpace(query)
	trimmedLocation := strings.TrimSpace(location)
	queryUsable := searchutil.MeetsMinimumLength(trimmedQuery, a.tuning.MinQueryLength)

	if trimmedQuery == "" && trimmedLocation == "" {
		return []models.Suggestion{}, nil
	}
	if !queryUsable && trimmedLocation == "" {
		return []models.Suggestion{}, nil
	}

	nameFilter := ""
	if queryUsable {
		nameFilter = trimmedQuery
	}

	var listings []models.Listing
	var categories []models.Category

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		found, err := a.listings.SearchListings(groupCtx, nameFilter, trimmedLocation)
		if err != nil {
			return fmt.Errorf("listing lookup: %w", err)
		}
		listings = found
		return nil
	})
	group.Go(func() error {
		found, err := a.categories.FetchCategories(groupCtx)
		if err != nil {
			return fmt.Errorf("category lookup: %w", err)
		}
		categories = found
		return nil
	})
	if err := group.Wait(); err != nil {
		a.logger.Debug("suggestion lookup failed", "query", trimmedQuery, "location", trimmedLocation, "error", err)
		return nil, err
	}

	categoryNames := make(map[string]string, len(categories))
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
	}

	suggestions := make([]models.Suggestion, 0, a.tuning.MaxListingSuggestions+a.tuning.MaxCategorySuggestions)
	for _, listing := range listings {
		if len(suggestions) >= a.tuning.MaxListingSuggestions {
			break
		}
		categoryName := listing.Category.Name
		if categoryName == "" {
			categoryName = categoryNames[listing.Category.ID]
		}
		suggestions = append(suggestions, models.Suggestion{
			Type:     models.SuggestionListing,
			ID:       listing.ID,
			Label:    listing.Name,
			Category: categoryName,
			Location: listing.Location,
			Active:   listing.IsActive,
		})
	}

	if nameFilter == "" {
		return suggestions, nil
	}

	added := 0
	for _, category := range categories {
		if added >= a.tuning.MaxCategorySuggestions {
			break
		}
		if !searchutil.ContainsFold(category.Name, nameFilter) {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			Type:  models.SuggestionCategory,
			ID:    category.ID,
			Label: category.Name,
		})
		added++
	}

	return suggestions, nil
}

// LocationSuggestions proposes distinct listing locations close to query,
// best match first.
func (a *Aggregator) LocationSuggestions(ctx context.Context, query string) ([]models.Suggestion, error) {
	trimmed := strings.TrimSpace(query)
	if !searchutil.MeetsMinimumLength(trimmed, a.tuning.MinQueryLength) {
		return []models.Suggestion{}, nil
	}

	listings, err := a.listings.FetchListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("location lookup: %w", err)
	}

	raw := make([]string, 0, len(listings))
	for _, listing := range listings {
		raw = append(raw, listing.Location)
	}

	type scored struct {
		location string
		score    int
	}
	candidates := make([]scored, 0)
	for _, location := range searchutil.UniqueExact(raw) {
		if !fuzzy.Matches(location, trimmed) {
			continue
		}
		candidates = append(candidates, scored{location: location, score: fuzzy.Score(location, trimmed)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	limit := min(len(candidates), a.tuning.MaxLocationSuggestions)
	suggestions := make([]models.Suggestion, 0, limit)
	for _, candidate := range candidates[:limit] {
		suggestions = append(suggestions, models.Suggestion{
			Type:     models.SuggestionLocation,
			ID:       candidate.location,
			Label:    candidate.location,
			Location: candidate.location,
		})
	}
	return suggestions, nil
}

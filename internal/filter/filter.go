package filter

import (
	"sort"
	"strings"

	"github.com/vyrlo/listing-browser/internal/models"
)

type Result struct {
	Listings []models.Listing
	// State is the filter state actually applied. It differs from the input
	// only when the featured fallback switched the quick filter to all.
	State    models.FilterState
	FellBack bool
}

// Apply narrows listings by state and orders them by the quick filter. The
// input slice is never reordered; the result is always a fresh slice.
func Apply(listings []models.Listing, state models.FilterState) Result {
	state.QuickFilter = models.ParseQuickFilter(string(state.QuickFilter))

	matched := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		if matchesPredicates(listing, state) {
			matched = append(matched, listing)
		}
	}

	ordered := applyQuickFilter(matched, state.QuickFilter)
	if state.QuickFilter == models.QuickFilterFeatured && len(ordered) == 0 && len(matched) > 0 {
		state.QuickFilter = models.QuickFilterAll
		return Result{
			Listings: applyQuickFilter(matched, state.QuickFilter),
			State:    state,
			FellBack: true,
		}
	}

	return Result{Listings: ordered, State: state}
}

func matchesPredicates(listing models.Listing, state models.FilterState) bool {
	name := strings.ToLower(strings.TrimSpace(state.Name))
	if name != "" && !strings.Contains(strings.ToLower(listing.Name), name) {
		return false
	}

	location := strings.ToLower(strings.TrimSpace(state.Location))
	if location != "" && !strings.Contains(strings.ToLower(listing.Location), location) {
		return false
	}

	categoryID := strings.TrimSpace(state.CategoryID)
	if categoryID != "" && listing.Category.ID != categoryID {
		return false
	}

	return true
}

func applyQuickFilter(matched []models.Listing, mode models.QuickFilter) []models.Listing {
	if mode == models.QuickFilterFeatured {
		featured := make([]models.Listing, 0, len(matched))
		for _, listing := range matched {
			if listing.IsPosted {
				featured = append(featured, listing)
			}
		}
		return featured
	}

	ordered := make([]models.Listing, len(matched))
	copy(ordered, matched)

	switch mode {
	case models.QuickFilterNewest:
		sort.SliceStable(ordered, func(i, j int) bool {
			return createdUnix(ordered[i]) > createdUnix(ordered[j])
		})
	case models.QuickFilterRating:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Rating > ordered[j].Rating
		})
	default:
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].IsPosted != ordered[j].IsPosted {
				return ordered[i].IsPosted
			}
			return ordered[i].Rating > ordered[j].Rating
		})
	}

	return ordered
}

// createdUnix places listings without a timestamp before every real one.
func createdUnix(listing models.Listing) int64 {
	if listing.CreatedAt == nil {
		return minUnixNano
	}
	return listing.CreatedAt.UnixNano()
}

const minUnixNano = -1 << 63

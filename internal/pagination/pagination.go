package pagination

import (
	"errors"
	"sync/atomic"

	"github.com/vyrlo/listing-browser/internal/models"
)

var ErrBusy = errors.New("a page load is already in progress")

func NewState(itemsPerPage int) models.PaginationState {
	if itemsPerPage <= 0 {
		itemsPerPage = 12
	}
	return models.PaginationState{
		Page:         1,
		ItemsPerPage: itemsPerPage,
		LoadedIDs:    map[string]struct{}{},
		HasMore:      true,
	}
}

// Reset returns the state a filter change leaves behind: first page, nothing
// loaded, more expected.
func Reset(state models.PaginationState) models.PaginationState {
	return NewState(state.ItemsPerPage)
}

// NextPage slices the current page out of filtered, drops anything already
// loaded and advances the state. The input state is left untouched.
func NextPage(filtered []models.Listing, state models.PaginationState) ([]models.Listing, models.PaginationState) {
	next := clone(state)
	if next.Page < 1 {
		next.Page = 1
	}
	if next.ItemsPerPage <= 0 {
		next.ItemsPerPage = 12
	}

	start := (next.Page - 1) * next.ItemsPerPage
	end := next.Page * next.ItemsPerPage
	if start >= len(filtered) {
		next.HasMore = false
		return []models.Listing{}, next
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]models.Listing, 0, end-start)
	for _, listing := range filtered[start:end] {
		if _, seen := next.LoadedIDs[listing.ID]; seen {
			continue
		}
		next.LoadedIDs[listing.ID] = struct{}{}
		items = append(items, listing)
	}

	next.HasMore = next.Page*next.ItemsPerPage < len(filtered)
	next.Page++

	return items, next
}

func clone(state models.PaginationState) models.PaginationState {
	loaded := make(map[string]struct{}, len(state.LoadedIDs))
	for id := range state.LoadedIDs {
		loaded[id] = struct{}{}
	}
	state.LoadedIDs = loaded
	return state
}

// Guard is the re-entrancy lock around page loads. A trigger that arrives
// while a load is running is dropped, not queued.
type Guard struct {
	loading atomic.Bool
}

func (g *Guard) Do(load func() error) error {
	if !g.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer g.loading.Store(false)
	return load()
}

func (g *Guard) Loading() bool {
	return g.loading.Load()
}

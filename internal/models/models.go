package models

import "time"

// CategoryRef is the normalized shape of a listing's category, whichever way
// the backend chose to encode it.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type DayHours struct {
	Status string `json:"status"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

type Listing struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Location     string              `json:"location"`
	Category     CategoryRef         `json:"category"`
	Rating       float64             `json:"rating"`
	IsPosted     bool                `json:"isPosted"`
	IsActive     bool                `json:"isActive"`
	OpeningHours map[string]DayHours `json:"openingHours,omitempty"`
	CreatedAt    *time.Time          `json:"createdAt,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Email        string              `json:"email,omitempty"`
	Website      string              `json:"website,omitempty"`
	Description  string              `json:"description,omitempty"`
	MainImage    string              `json:"mainImage,omitempty"`
	Reviews      []string            `json:"reviews,omitempty"`
}

type Category struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Icon      string   `json:"icon,omitempty"`
	IconURL   string   `json:"iconUrl,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

type QuickFilter string

const (
	QuickFilterFeatured QuickFilter = "featured"
	QuickFilterAll      QuickFilter = "all"
	QuickFilterNewest   QuickFilter = "newest"
	QuickFilterRating   QuickFilter = "rating"
)

// ParseQuickFilter maps raw input onto one of the four modes; anything
// unrecognized becomes QuickFilterAll.
func ParseQuickFilter(raw string) QuickFilter {
	switch QuickFilter(raw) {
	case QuickFilterFeatured, QuickFilterNewest, QuickFilterRating:
		return QuickFilter(raw)
	default:
		return QuickFilterAll
	}
}

type FilterState struct {
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	CategoryID  string      `json:"categoryId"`
	QuickFilter QuickFilter `json:"quickFilter"`
}

func DefaultFilterState() FilterState {
	return FilterState{QuickFilter: QuickFilterAll}
}

type PaginationState struct {
	Page         int                 `json:"page"`
	ItemsPerPage int                 `json:"itemsPerPage"`
	LoadedIDs    map[string]struct{} `json:"-"`
	HasMore      bool                `json:"hasMore"`
}

type SuggestionType string

const (
	SuggestionListing  SuggestionType = "listing"
	SuggestionCategory SuggestionType = "category"
	SuggestionLocation SuggestionType = "location"
)

type Suggestion struct {
	Type     SuggestionType `json:"type"`
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Category string         `json:"category,omitempty"`
	Location string         `json:"location,omitempty"`
	Active   bool           `json:"active,omitempty"`
}

// Session is one browse page instance: the filter the user built up and how
// far through the filtered set they have scrolled.
type Session struct {
	ID          string          `json:"id"`
	Filter      FilterState     `json:"filter"`
	Pagination  PaginationState `json:"pagination"`
	NoticeShown bool            `json:"noticeShown"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

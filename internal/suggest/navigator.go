package suggest

import "github.com/vyrlo/listing-browser/internal/models"

type ActionKind string

const (
	ActionNone             ActionKind = ""
	ActionFillQuery        ActionKind = "fill_query"
	ActionNavigateCategory ActionKind = "navigate_category"
	ActionFillLocation     ActionKind = "fill_location"
)

// Action is what the UI layer does once a suggestion is committed.
type Action struct {
	Kind       ActionKind `json:"kind"`
	Value      string     `json:"value,omitempty"`
	CategoryID string     `json:"categoryId,omitempty"`
}

// Commit maps a chosen suggestion to its action. Listings fill the search
// input, categories open the filtered view, locations fill the location input.
func Commit(suggestion models.Suggestion) Action {
	switch suggestion.Type {
	case models.SuggestionListing:
		return Action{Kind: ActionFillQuery, Value: suggestion.Label}
	case models.SuggestionCategory:
		return Action{Kind: ActionNavigateCategory, Value: suggestion.Label, CategoryID: suggestion.ID}
	case models.SuggestionLocation:
		return Action{Kind: ActionFillLocation, Value: suggestion.Label}
	default:
		return Action{Kind: ActionNone}
	}
}

// Navigator tracks keyboard selection over a visible suggestion list.
// Selected is -1 while nothing is highlighted.
type Navigator struct {
	items    []models.Suggestion
	selected int
	visible  bool
}

func NewNavigator() Navigator {
	return Navigator{selected: -1}
}

// Show replaces the list and clears the selection. An empty list stays hidden.
func (n Navigator) Show(items []models.Suggestion) Navigator {
	n.items = items
	n.selected = -1
	n.visible = len(items) > 0
	return n
}

func (n Navigator) Down() Navigator {
	if !n.visible {
		return n
	}
	if n.selected < len(n.items)-1 {
		n.selected++
	}
	return n
}

func (n Navigator) Up() Navigator {
	if !n.visible {
		return n
	}
	if n.selected > -1 {
		n.selected--
	}
	return n
}

// Enter commits the highlighted suggestion and hides the list. With nothing
// highlighted it reports false and leaves the navigator untouched.
func (n Navigator) Enter() (Navigator, Action, bool) {
	if !n.visible || n.selected < 0 || n.selected >= len(n.items) {
		return n, Action{Kind: ActionNone}, false
	}
	action := Commit(n.items[n.selected])
	return n.Escape(), action, true
}

func (n Navigator) Escape() Navigator {
	n.selected = -1
	n.visible = false
	return n
}

func (n Navigator) Selected() int {
	return n.selected
}

func (n Navigator) Visible() bool {
	return n.visible
}

func (n Navigator) Items() []models.Suggestion {
	return n.items
}

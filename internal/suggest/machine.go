package suggest

import (
	"strings"

	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/searchutil"
)

type State string

const (
	StateIdle               State = "idle"
	StateLoading            State = "loading"
	StateShowingSuggestions State = "showingSuggestions"
	StateError              State = "error"
)

// Machine is the suggestion box state. Transitions are pure: each returns
// the next value and leaves the receiver alone.
type Machine struct {
	State       State               `json:"state"`
	Seq         uint64              `json:"seq"`
	Query       string              `json:"query"`
	Location    string              `json:"location"`
	Suggestions []models.Suggestion `json:"suggestions"`
	Err         string              `json:"error,omitempty"`
}

func NewMachine() Machine {
	return Machine{State: StateIdle}
}

// InputChanged records new input tagged with seq. Input that cannot produce
// suggestions drops back to idle instead of loading.
func (m Machine) InputChanged(query string, location string, seq uint64, minLength int) Machine {
	next := Machine{
		Seq:      seq,
		Query:    strings.TrimSpace(query),
		Location: strings.TrimSpace(location),
	}
	if !searchutil.MeetsMinimumLength(next.Query, minLength) && next.Location == "" {
		next.State = StateIdle
		return next
	}
	next.State = StateLoading
	return next
}

// ResultsArrived applies a response. It reports false and keeps the current
// state when seq is not the one being waited on.
func (m Machine) ResultsArrived(seq uint64, suggestions []models.Suggestion) (Machine, bool) {
	if m.State != StateLoading || seq != m.Seq {
		return m, false
	}
	m.Err = ""
	if len(suggestions) == 0 {
		m.State = StateIdle
		m.Suggestions = nil
		return m, true
	}
	m.State = StateShowingSuggestions
	m.Suggestions = suggestions
	return m, true
}

func (m Machine) Failed(seq uint64, err error) (Machine, bool) {
	if m.State != StateLoading || seq != m.Seq {
		return m, false
	}
	m.State = StateError
	m.Suggestions = nil
	if err != nil {
		m.Err = err.Error()
	}
	return m, true
}

func (m Machine) Dismissed() Machine {
	m.State = StateIdle
	m.Suggestions = nil
	m.Err = ""
	return m
}

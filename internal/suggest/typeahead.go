package suggest

import (
	"context"
	"sync"
)

// Typeahead drives one suggestion box: keystrokes are debounced, lookups
// are sequenced so only the latest answer lands, and key presses move
// through the visible list.
type Typeahead struct {
	aggregator *Aggregator
	debouncer  *Debouncer
	sequencer  Sequencer
	onChange   func(Machine)

	mu      sync.Mutex
	machine Machine
	nav     Navigator
}

func NewTypeahead(aggregator *Aggregator, onChange func(Machine)) *Typeahead {
	if onChange == nil {
		onChange = func(Machine) {}
	}
	return &Typeahead{
		aggregator: aggregator,
		debouncer:  NewDebouncer(aggregator.Tuning().DebounceInterval),
		onChange:   onChange,
		machine:    NewMachine(),
		nav:        NewNavigator(),
	}
}

// Input handles a change of the query or location text.
func (t *Typeahead) Input(ctx context.Context, query string, location string) {
	seq := t.sequencer.Next()

	t.mu.Lock()
	t.machine = t.machine.InputChanged(query, location, seq, t.aggregator.Tuning().MinQueryLength)
	t.nav = t.nav.Escape()
	snapshot := t.machine
	t.mu.Unlock()

	if snapshot.State != StateLoading {
		t.debouncer.Stop()
		t.onChange(snapshot)
		return
	}

	t.debouncer.Trigger(func() {
		t.lookup(ctx, seq, snapshot.Query, snapshot.Location)
	})
}

func (t *Typeahead) lookup(ctx context.Context, seq uint64, query string, location string) {
	if !t.sequencer.IsLatest(seq) {
		return
	}
	suggestions, err := t.aggregator.GetSuggestions(ctx, query, location)

	t.mu.Lock()
	var applied bool
	if err != nil {
		t.machine, applied = t.machine.Failed(seq, err)
	} else {
		t.machine, applied = t.machine.ResultsArrived(seq, suggestions)
	}
	if applied {
		t.nav = t.nav.Show(t.machine.Suggestions)
	}
	snapshot := t.machine
	t.mu.Unlock()

	if applied {
		t.onChange(snapshot)
	}
}

// Key applies a navigation key: "down", "up", "enter" or "escape". Enter
// returns the committed action.
func (t *Typeahead) Key(key string) (Action, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch key {
	case "down":
		t.nav = t.nav.Down()
	case "up":
		t.nav = t.nav.Up()
	case "escape":
		t.nav = t.nav.Escape()
		t.machine = t.machine.Dismissed()
	case "enter":
		nav, action, ok := t.nav.Enter()
		if !ok {
			return action, false
		}
		t.nav = nav
		t.machine = t.machine.Dismissed()
		return action, true
	}
	return Action{Kind: ActionNone}, false
}

func (t *Typeahead) Machine() Machine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine
}

func (t *Typeahead) Navigator() Navigator {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nav
}

// Flush runs a debounced lookup that is still waiting and blocks until any
// lookup in progress has delivered its result.
func (t *Typeahead) Flush() {
	t.debouncer.Flush()
}

func (t *Typeahead) Close() {
	t.debouncer.Stop()
}

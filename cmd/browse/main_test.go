package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/suggest"
)

func sampleListings(count int) []models.Listing {
	listings := make([]models.Listing, 0, count)
	for i := 1; i <= count; i++ {
		listings = append(listings, models.Listing{ID: fmt.Sprintf("l%d", i), Name: fmt.Sprintf("Listing %d", i)})
	}
	return listings
}

func TestCollectPagesWalksUntilExhausted(t *testing.T) {
	pages, stats := collectPages(sampleListings(25), models.DefaultFilterState(), 12, 0)

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	sizes := []int{len(pages[0].Items), len(pages[1].Items), len(pages[2].Items)}
	if !reflect.DeepEqual(sizes, []int{12, 12, 1}) {
		t.Fatalf("unexpected page sizes %v", sizes)
	}
	if pages[2].HasMore || !pages[1].HasMore {
		t.Fatalf("unexpected hasMore flags")
	}
	if stats.Total != 25 || stats.Printed != 25 || stats.Pages != 3 {
		t.Fatalf("unexpected summary %+v", stats)
	}
}

func TestCollectPagesRespectsLimitAndNotice(t *testing.T) {
	pages, stats := collectPages(sampleListings(25), models.FilterState{QuickFilter: models.QuickFilterFeatured}, 12, 1)

	if len(pages) != 1 || !pages[0].HasMore {
		t.Fatalf("expected a single page with more to come, got %d pages", len(pages))
	}
	if pages[0].Notice == "" || !stats.FellBack {
		t.Fatalf("expected featured fallback notice")
	}
}

func TestCollectPagesEmptySet(t *testing.T) {
	pages, stats := collectPages(nil, models.DefaultFilterState(), 12, 0)

	if len(pages) != 1 || len(pages[0].Items) != 0 || pages[0].HasMore {
		t.Fatalf("expected one empty terminal page, got %+v", pages)
	}
	if stats.Total != 0 {
		t.Fatalf("expected empty total, got %d", stats.Total)
	}
}

func TestParseCommand(t *testing.T) {
	cases := map[string]command{
		"cafe":            {kind: "query", arg: "cafe"},
		"":                {kind: "query", arg: ""},
		":down":           {kind: "down"},
		":UP":             {kind: "up"},
		":esc":            {kind: "escape"},
		":enter":          {kind: "enter"},
		":loc Lisbon Sul": {kind: "location", arg: "Lisbon Sul"},
		":quit":           {kind: "quit"},
		":wat":            {kind: "unknown", arg: "wat"},
	}
	for input, want := range cases {
		if got := parseCommand(input); got != want {
			t.Fatalf("parseCommand(%q) = %+v, want %+v", input, got, want)
		}
	}
}

type stubSource struct {
	listings []models.Listing
}

func (s stubSource) SearchListings(_ context.Context, name string, _ string) ([]models.Listing, error) {
	out := make([]models.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		if strings.Contains(strings.ToLower(listing.Name), strings.ToLower(name)) {
			out = append(out, listing)
		}
	}
	return out, nil
}

func (s stubSource) FetchListings(context.Context) ([]models.Listing, error) {
	return s.listings, nil
}

func (s stubSource) FetchCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "drinks", Name: "Coffee Shops"}}, nil
}

func TestRunInteractiveFlushesPendingLookupAtEOF(t *testing.T) {
	source := stubSource{listings: []models.Listing{
		{ID: "l1", Name: "Coffee House", Location: "Lisbon"},
		{ID: "l2", Name: "Tea Room", Location: "Lisbon"},
	}}
	aggregator := suggest.NewAggregator(source, source, config.DefaultTuning(), nil)

	var out bytes.Buffer
	if err := runInteractive(context.Background(), aggregator, strings.NewReader("coffee\n"), &out); err != nil {
		t.Fatalf("run interactive: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || lines[0] == "" {
		t.Fatalf("expected one suggestion update, got %q", out.String())
	}
	var machine suggest.Machine
	if err := json.Unmarshal([]byte(lines[0]), &machine); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if machine.State != suggest.StateShowingSuggestions || len(machine.Suggestions) != 2 {
		t.Fatalf("unexpected machine %+v", machine)
	}
	if machine.Suggestions[0].Label != "Coffee House" || machine.Suggestions[1].Type != models.SuggestionCategory {
		t.Fatalf("unexpected suggestions %+v", machine.Suggestions)
	}
}

func TestRunInteractiveShortQueryAndQuit(t *testing.T) {
	source := stubSource{listings: []models.Listing{{ID: "l1", Name: "Coffee House"}}}
	aggregator := suggest.NewAggregator(source, source, config.DefaultTuning(), nil)

	var out bytes.Buffer
	input := "c\n:bogus\n:quit\ncoffee\n"
	if err := runInteractive(context.Background(), aggregator, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run interactive: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected idle update and error line, got %q", out.String())
	}
	if !strings.Contains(lines[0], `"state":"idle"`) {
		t.Fatalf("expected idle state for short query, got %s", lines[0])
	}
	if !strings.Contains(lines[1], "unknown command") {
		t.Fatalf("expected unknown command error, got %s", lines[1])
	}
}

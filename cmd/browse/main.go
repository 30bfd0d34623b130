package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/vyrlo/listing-browser/internal/backend"
	"github.com/vyrlo/listing-browser/internal/browse"
	"github.com/vyrlo/listing-browser/internal/catalog"
	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/filter"
	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/pagination"
	"github.com/vyrlo/listing-browser/internal/suggest"
)

type pageOutput struct {
	Page    int              `json:"page"`
	Items   []models.Listing `json:"items"`
	HasMore bool             `json:"hasMore"`
	Total   int              `json:"total"`
	Notice  string           `json:"notice,omitempty"`
}

type summary struct {
	Total    int
	Pages    int
	Printed  int
	FellBack bool
}

func main() {
	var (
		name        = flag.String("name", "", "Filter by listing name substring")
		location    = flag.String("location", "", "Filter by location substring")
		categoryID  = flag.String("category", "", "Filter by category id")
		quick       = flag.String("quick", string(models.QuickFilterAll), "Quick filter: featured|all|newest|rating")
		maxPages    = flag.Int("pages", 1, "Number of pages to print (0 = all)")
		interactive = flag.Bool("interactive", false, "Read keystrokes from stdin and print suggestions")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	client := backend.NewClient(backend.Options{
		BaseURL:       cfg.BackendBaseURL,
		Timeout:       cfg.BackendTimeout,
		RatePerSecond: cfg.BackendRatePerSecond,
		Logger:        logger,
	})
	listingCatalog := catalog.New(client, logger)
	ctx := context.Background()

	if *interactive {
		var listingSource suggest.ListingSource = listingCatalog
		var categorySource suggest.CategorySource = listingCatalog
		if cfg.SuggestSource == config.SuggestSourceRemote {
			listingSource = listingCatalog.WithRemoteSearch(client)
		}
		aggregator := suggest.NewAggregator(listingSource, categorySource, cfg.Tuning, logger)
		if err := runInteractive(ctx, aggregator, os.Stdin, os.Stdout); err != nil {
			slog.Error("interactive session failed", "error", err)
			os.Exit(1)
		}
		return
	}

	listings, err := listingCatalog.Listings(ctx)
	if err != nil {
		slog.Error("failed to load listings", "backend", cfg.BackendBaseURL, "error", err)
		os.Exit(1)
	}

	state := models.FilterState{
		Name:        *name,
		Location:    *location,
		CategoryID:  *categoryID,
		QuickFilter: models.ParseQuickFilter(strings.ToLower(*quick)),
	}
	pages, stats := collectPages(listings, state, cfg.Tuning.ItemsPerPage, *maxPages)

	encoder := json.NewEncoder(os.Stdout)
	for _, page := range pages {
		if err := encoder.Encode(page); err != nil {
			slog.Error("failed to write page", "error", err)
			os.Exit(1)
		}
	}

	slog.Info(
		"browse completed",
		"total", stats.Total,
		"pages", stats.Pages,
		"printed", stats.Printed,
		"featured_fallback", stats.FellBack,
	)
}

// collectPages walks the filtered set page by page, stopping after maxPages
// when it is positive.
func collectPages(listings []models.Listing, state models.FilterState, itemsPerPage int, maxPages int) ([]pageOutput, summary) {
	result := filter.Apply(listings, state)
	stats := summary{Total: len(result.Listings), FellBack: result.FellBack}

	current := pagination.NewState(itemsPerPage)
	pages := make([]pageOutput, 0)
	for {
		number := current.Page
		items, next := pagination.NextPage(result.Listings, current)
		current = next

		page := pageOutput{Page: number, Items: items, HasMore: next.HasMore, Total: len(result.Listings)}
		if result.FellBack && len(pages) == 0 {
			page.Notice = browse.FeaturedFallbackNotice
		}
		pages = append(pages, page)
		stats.Pages++
		stats.Printed += len(items)

		if !next.HasMore || (maxPages > 0 && stats.Pages >= maxPages) {
			break
		}
	}
	return pages, stats
}

type command struct {
	kind string
	arg  string
}

// parseCommand reads one stdin line. Lines starting with ':' are navigation
// commands; anything else is the new query text.
func parseCommand(line string) command {
	trimmed := strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(trimmed, ":") {
		return command{kind: "query", arg: trimmed}
	}

	head, arg, _ := strings.Cut(strings.TrimPrefix(trimmed, ":"), " ")
	switch strings.ToLower(head) {
	case "down", "up", "enter", "escape":
		return command{kind: strings.ToLower(head)}
	case "esc":
		return command{kind: "escape"}
	case "loc", "location":
		return command{kind: "location", arg: arg}
	case "q", "quit", "exit":
		return command{kind: "quit"}
	default:
		return command{kind: "unknown", arg: head}
	}
}

func runInteractive(ctx context.Context, aggregator *suggest.Aggregator, in io.Reader, out io.Writer) error {
	var writeMu sync.Mutex
	encoder := json.NewEncoder(out)
	emit := func(value any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := encoder.Encode(value); err != nil {
			slog.Warn("failed to write output", "error", err)
		}
	}

	typeahead := suggest.NewTypeahead(aggregator, func(machine suggest.Machine) {
		emit(machine)
	})
	defer typeahead.Close()

	query := ""
	location := ""
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := parseCommand(scanner.Text())
		switch cmd.kind {
		case "quit":
			return nil
		case "query":
			query = cmd.arg
			typeahead.Input(ctx, query, location)
		case "location":
			location = cmd.arg
			typeahead.Input(ctx, query, location)
		case "down", "up", "escape":
			typeahead.Key(cmd.kind)
			emit(map[string]any{"selected": typeahead.Navigator().Selected(), "visible": typeahead.Navigator().Visible()})
		case "enter":
			action, ok := typeahead.Key("enter")
			if !ok {
				continue
			}
			switch action.Kind {
			case suggest.ActionFillQuery:
				query = action.Value
			case suggest.ActionFillLocation:
				location = action.Value
			}
			emit(action)
		default:
			emit(map[string]any{"error": fmt.Sprintf("unknown command %q", cmd.arg)})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	typeahead.Flush()
	return nil
}

// Package catalog holds the listing and category sets fetched from the
// backend. Both are loaded once and then only read; Clear is the sole way to
// force a refetch.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vyrlo/listing-browser/internal/models"
)

type Source interface {
	FetchListings(ctx context.Context) ([]models.Listing, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

type Catalog struct {
	source Source
	logger *slog.Logger

	loadMu sync.Mutex

	mu         sync.RWMutex
	loaded     bool
	loadedAt   time.Time
	listings   []models.Listing
	categories []models.Category
	byID       map[string]models.Category
}

func New(source Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{source: source, logger: logger}
}

// Ensure loads the catalog unless it is already in memory. A failed load
// leaves nothing cached, so the next call fetches again.
func (c *Catalog) Ensure(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.Loaded() {
		return nil
	}
	return c.load(ctx)
}

// Reload drops the cached sets and fetches them again.
func (c *Catalog) Reload(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.Clear()
	return c.load(ctx)
}

func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = false
	c.loadedAt = time.Time{}
	c.listings = nil
	c.categories = nil
	c.byID = nil
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Catalog) load(ctx context.Context) error {
	started := time.Now()

	var listings []models.Listing
	var categories []models.Category

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		fetched, err := c.source.FetchListings(groupCtx)
		if err != nil {
			return fmt.Errorf("load listings: %w", err)
		}
		listings = fetched
		return nil
	})
	group.Go(func() error {
		fetched, err := c.source.FetchCategories(groupCtx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		categories = fetched
		return nil
	})
	if err := group.Wait(); err != nil {
		c.logger.Warn("catalog load failed", "error", err)
		return err
	}

	byID := make(map[string]models.Category, len(categories))
	for _, category := range categories {
		if category.ID == "" {
			continue
		}
		byID[category.ID] = category
	}
	for index := range listings {
		ref := &listings[index].Category
		if ref.Name != "" {
			continue
		}
		if category, ok := byID[ref.ID]; ok {
			ref.Name = category.Name
		}
	}

	c.mu.Lock()
	c.loaded = true
	c.loadedAt = time.Now().UTC()
	c.listings = listings
	c.categories = categories
	c.byID = byID
	c.mu.Unlock()

	c.logger.Info("catalog loaded",
		"listings", len(listings),
		"categories", len(categories),
		"duration", time.Since(started).String(),
	)
	return nil
}

// Listings returns the cached listing set, loading it on first use. The
// returned slice is shared and must not be modified.
func (c *Catalog) Listings(ctx context.Context) ([]models.Listing, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listings, nil
}

func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories, nil
}

func (c *Catalog) Category(id string) (models.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	category, ok := c.byID[strings.TrimSpace(id)]
	return category, ok
}

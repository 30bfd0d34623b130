package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDebounceInterval       = 300 * time.Millisecond
	DefaultMinQueryLength         = 2
	DefaultItemsPerPage           = 12
	DefaultMaxListingSuggestions  = 4
	DefaultMaxCategorySuggestions = 3
	DefaultMaxLocationSuggestions = 5
)

// Tuning holds the overridable constants of the search, suggestion and
// pagination core.
type Tuning struct {
	DebounceInterval       time.Duration `yaml:"debounce_interval"`
	MinQueryLength         int           `yaml:"min_query_length"`
	ItemsPerPage           int           `yaml:"items_per_page"`
	MaxListingSuggestions  int           `yaml:"max_listing_suggestions"`
	MaxCategorySuggestions int           `yaml:"max_category_suggestions"`
	MaxLocationSuggestions int           `yaml:"max_location_suggestions"`
}

func DefaultTuning() Tuning {
	return Tuning{
		DebounceInterval:       DefaultDebounceInterval,
		MinQueryLength:         DefaultMinQueryLength,
		ItemsPerPage:           DefaultItemsPerPage,
		MaxListingSuggestions:  DefaultMaxListingSuggestions,
		MaxCategorySuggestions: DefaultMaxCategorySuggestions,
		MaxLocationSuggestions: DefaultMaxLocationSuggestions,
	}
}

// LoadTuning starts from the defaults, applies the YAML file at path when it
// exists and finally the environment overrides.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()

	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		content, err := os.ReadFile(trimmed)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(content, &tuning); err != nil {
				return Tuning{}, fmt.Errorf("parse search tuning %s: %w", trimmed, err)
			}
		case os.IsNotExist(err):
		default:
			return Tuning{}, fmt.Errorf("read search tuning %s: %w", trimmed, err)
		}
	}

	tuning.DebounceInterval = getEnvAsDuration("SUGGEST_DEBOUNCE", tuning.DebounceInterval)
	tuning.MinQueryLength = getEnvAsInt("MIN_QUERY_LENGTH", tuning.MinQueryLength)
	tuning.ItemsPerPage = getEnvAsInt("ITEMS_PER_PAGE", tuning.ItemsPerPage)

	return tuning.Normalize(), nil
}

// Normalize replaces non-positive values with their defaults.
func (t Tuning) Normalize() Tuning {
	defaults := DefaultTuning()
	if t.DebounceInterval <= 0 {
		t.DebounceInterval = defaults.DebounceInterval
	}
	if t.MinQueryLength <= 0 {
		t.MinQueryLength = defaults.MinQueryLength
	}
	if t.ItemsPerPage <= 0 {
		t.ItemsPerPage = defaults.ItemsPerPage
	}
	if t.MaxListingSuggestions <= 0 {
		t.MaxListingSuggestions = defaults.MaxListingSuggestions
	}
	if t.MaxCategorySuggestions <= 0 {
		t.MaxCategorySuggestions = defaults.MaxCategorySuggestions
	}
	if t.MaxLocationSuggestions <= 0 {
		t.MaxLocationSuggestions = defaults.MaxLocationSuggestions
	}
	return t
}

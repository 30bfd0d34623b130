package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vyrlo/listing-browser/internal/models"
)

type listingPayload struct {
	MongoID      string                     `json:"_id"`
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Location     string                     `json:"location"`
	CategoryID   json.RawMessage            `json:"categoryId"`
	Rating       *float64                   `json:"rating"`
	IsPosted     bool                       `json:"isPosted"`
	IsActive     bool                       `json:"isActive"`
	OpeningHours map[string]models.DayHours `json:"openingHours"`
	CreatedAt    string                     `json:"createdAt"`
	Phone        string                     `json:"phone"`
	Email        string                     `json:"email"`
	Website      string                     `json:"website"`
	Description  string                     `json:"description"`
	MainImage    string                     `json:"mainImage"`
	Reviews      []string                   `json:"reviews"`
}

type categoryPayload struct {
	MongoID   string   `json:"_id"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Icon      string   `json:"icon"`
	IconURL   string   `json:"iconUrl"`
	Amenities []string `json:"amenities"`
}

func (p listingPayload) toModel() (models.Listing, error) {
	category, err := parseCategoryRef(p.CategoryID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("listing %s: %w", firstNonEmpty(p.MongoID, p.ID), err)
	}

	listing := models.Listing{
		ID:           firstNonEmpty(p.MongoID, p.ID),
		Name:         strings.TrimSpace(p.Name),
		Location:     strings.TrimSpace(p.Location),
		Category:     category,
		IsPosted:     p.IsPosted,
		IsActive:     p.IsActive,
		OpeningHours: p.OpeningHours,
		Phone:        p.Phone,
		Email:        p.Email,
		Website:      p.Website,
		Description:  p.Description,
		MainImage:    p.MainImage,
		Reviews:      p.Reviews,
	}
	if p.Rating != nil {
		listing.Rating = *p.Rating
	}
	if createdAt, ok := parseTimestamp(p.CreatedAt); ok {
		listing.CreatedAt = &createdAt
	}

	return listing, nil
}

func (p categoryPayload) toModel() models.Category {
	return models.Category{
		ID:        firstNonEmpty(p.MongoID, p.ID),
		Name:      strings.TrimSpace(p.Name),
		Icon:      p.Icon,
		IconURL:   p.IconURL,
		Amenities: p.Amenities,
	}
}

// parseCategoryRef accepts the category either inlined as an object or as a
// bare identifier.
func parseCategoryRef(raw json.RawMessage) (models.CategoryRef, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.CategoryRef{}, nil
	}

	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return models.CategoryRef{}, fmt.Errorf("decode category id: %w", err)
		}
		return models.CategoryRef{ID: strings.TrimSpace(id)}, nil
	}

	var inline categoryPayload
	if err := json.Unmarshal(trimmed, &inline); err != nil {
		return models.CategoryRef{}, fmt.Errorf("decode category object: %w", err)
	}
	return models.CategoryRef{
		ID:   firstNonEmpty(inline.MongoID, inline.ID),
		Name: strings.TrimSpace(inline.Name),
	}, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

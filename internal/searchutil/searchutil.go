package searchutil

import (
	"strings"
	"unicode/utf8"
)

const DefaultMinLength = 2

func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// MeetsMinimumLength reports whether the trimmed input has at least min
// characters. A non-positive min means DefaultMinLength.
func MeetsMinimumLength(value string, min int) bool {
	if min <= 0 {
		min = DefaultMinLength
	}
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= min
}

func ContainsFold(text string, query string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// UniqueExact drops blank values and repeats, comparing case-sensitively and
// keeping first-seen order.
func UniqueExact(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	unique := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}

	return unique
}

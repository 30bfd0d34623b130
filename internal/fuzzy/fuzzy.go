// Package fuzzy implements the tolerant matching used for suggestions and
// relevance ranking: Levenshtein distance plus a small scoring scale.
package fuzzy

import (
	"strings"

	"github.com/vyrlo/listing-browser/internal/searchutil"
)

const (
	MaxDistance = 3

	ScoreExact    = 100
	ScoreContains = 75
	scoreBase     = 50
)

// Distance returns the Levenshtein edit distance between a and b. The full
// matrix has len(b)+1 rows and len(a)+1 columns.
func Distance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	matrix := make([][]int, len(rb)+1)
	for row := range matrix {
		matrix[row] = make([]int, len(ra)+1)
		matrix[row][0] = row
	}
	for col := 0; col <= len(ra); col++ {
		matrix[0][col] = col
	}

	for row := 1; row <= len(rb); row++ {
		for col := 1; col <= len(ra); col++ {
			if rb[row-1] == ra[col-1] {
				matrix[row][col] = matrix[row-1][col-1]
				continue
			}
			matrix[row][col] = 1 + min(
				matrix[row-1][col-1],
				matrix[row][col-1],
				matrix[row-1][col],
			)
		}
	}

	return matrix[len(rb)][len(ra)]
}

// Matches reports whether query is an exact match, a case-insensitive
// substring of text, or within MaxDistance edits of it.
func Matches(text string, query string) bool {
	t := strings.ToLower(text)
	q := strings.ToLower(query)
	if t == q || searchutil.ContainsFold(text, query) {
		return true
	}
	return Distance(t, q) <= MaxDistance
}

// Score ranks text against query. Only the relative order is meaningful; very
// dissimilar strings score below zero.
func Score(text string, query string) int {
	t := strings.ToLower(text)
	q := strings.ToLower(query)
	switch {
	case t == q:
		return ScoreExact
	case searchutil.ContainsFold(text, query):
		return ScoreContains
	default:
		return scoreBase - Distance(t, q)
	}
}

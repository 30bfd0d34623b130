package fuzzy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"", "", 0},
		{"abc", "", 3},
		{"", "abcd", 4},
		{"café", "cafe", 1},
		{"same", "same", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
	}
}

func TestDistanceProperties(t *testing.T) {
	words := []string{"", "a", "coffee", "Coffee House", "diner", "lisboa", "lisbon", "ümlaut"}
	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a))
		assert.Equal(t, len([]rune(a)), Distance(a, ""))
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "symmetry for %q/%q", a, b)
		}
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Coffee House", "coffee house"))
	assert.True(t, Matches("Coffee House", "HOUSE"))
	assert.True(t, Matches("Lisbon", "Lisboa"), "one substitution away")
	assert.False(t, Matches("Porto", "Lisbon"))
	assert.True(t, Matches("", ""))
	assert.True(t, Matches("anything", ""), "empty query is contained everywhere")
	assert.True(t, Matches("", "abc"), "empty text is three edits from a three-letter query")
	assert.False(t, Matches("", "abcd"))
}

func TestMatchesContainment(t *testing.T) {
	texts := []string{"Joe's Cafe", "ACE DINER", "Downtown Lisbon"}
	for _, text := range texts {
		for start := 0; start < len(text); start++ {
			for end := start; end <= len(text); end++ {
				assert.True(t, Matches(text, text[start:end]))
			}
		}
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, ScoreExact, Score("Coffee", "coffee"))
	assert.Equal(t, ScoreContains, Score("Coffee House", "coffe"))
	assert.Equal(t, 49, Score("Lisbon", "Lisboa"))
	assert.Less(t, Score("a", strings.Repeat("xyz", 30)), 0)

	misspelled := Score("Coffee House", "coffe")
	assert.Positive(t, misspelled)
	assert.Less(t, misspelled, ScoreExact)
}

func TestMatchesAndScoreAgreeOnContainment(t *testing.T) {
	pairs := [][2]string{
		{"Coffee House", "HOUSE"},
		{"ÉCOLE Lisboa", "école"},
		{"Ace Diner", "ace d"},
		{"Porto", "Lisbon"},
		{"Lisbon", "Lisboa"},
	}
	for _, pair := range pairs {
		text, query := pair[0], pair[1]
		contained := Score(text, query) >= ScoreContains
		if contained {
			assert.True(t, Matches(text, query), "%q in %q", query, text)
		}
		assert.Equal(t, strings.Contains(strings.ToLower(text), strings.ToLower(query)), contained, "%q in %q", query, text)
	}
}

package repository

import "strings"

// Keeps bound parameters per statement well under SQLite's limit.
const loadedIDBatchSize = 200

func sqlPlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	if count == 1 {
		return "?"
	}

	var builder strings.Builder
	builder.Grow((count * 2) - 1)
	for index := 0; index < count; index++ {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('?')
	}

	return builder.String()
}

// sqlValueTuples renders rows groups of width placeholders: "(?,?),(?,?)".
func sqlValueTuples(rows int, width int) string {
	if rows <= 0 || width <= 0 {
		return ""
	}

	tuple := "(" + sqlPlaceholders(width) + ")"
	var builder strings.Builder
	builder.Grow(rows*(len(tuple)+1) - 1)
	for index := 0; index < rows; index++ {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(tuple)
	}
	return builder.String()
}

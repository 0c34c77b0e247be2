package app

import "strings"

// Queries end up as span attributes, so collapse whitespace and cap the
// length to keep traces readable.
func formatDBQueryForTrace(query string) string {
	const maxLen = 512

	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) > maxLen {
		return normalized[:maxLen] + "..."
	}
	return normalized
}

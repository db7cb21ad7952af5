// Package search holds the case-insensitive substring matching shared by the
// listing endpoints.
package search

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Normalize trims the raw query. An empty result means "match everything".
func Normalize(term string) string {
	return strings.TrimSpace(term)
}

// LikePattern builds a lowercase `%term%` pattern with LIKE wildcards escaped.
// Use it with `LOWER(col) LIKE ? ESCAPE '\'`.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(Normalize(term))) + "%"
}

// Contains reports whether value contains term, ignoring case.
func Contains(value, term string) bool {
	term = Normalize(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

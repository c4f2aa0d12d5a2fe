package qualtrics

import (
	"fmt"
	"strings"
)

// matchName returns the id of the single item whose name contains search.
// The match is case-sensitive.
func matchName[T any](kind, search string, items []T, key func(T) Candidate) (string, error) {
	var matches []Candidate
	for _, item := range items {
		c := key(item)
		if strings.Contains(c.Name, search) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s matching %q: %w", kind, search, ErrNotFound)
	case 1:
		return matches[0].ID, nil
	default:
		return "", &AmbiguousMatchError{Kind: kind, Search: search, Candidates: matches}
	}
}

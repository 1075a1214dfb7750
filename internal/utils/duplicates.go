package utils

import (
	"strings"
)

// SeenFilter drops repeated words, case-insensitively.
// It is not safe for concurrent use.
type SeenFilter struct {
	seenWords map[string]bool
}

// NewSeenFilter creates a filter that already rejects the given words.
func NewSeenFilter(exclude ...string) *SeenFilter {
	seenWords := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		seenWords[strings.ToLower(w)] = true
	}
	return &SeenFilter{seenWords: seenWords}
}

// ShouldInclude checks if a word should be included in results (not a duplicate)
// Returns true if the word should be included, false if it's a duplicate
func (f *SeenFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}


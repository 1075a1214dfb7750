// Package decoder ranks dictionary words against the weighted key hits of a gesture.
package decoder

// Lexicon is the dictionary contract the decoder searches.
// *dictionary.Index satisfies it.
type Lexicon interface {
	// Candidates returns words whose letters-only spelling starts with first,
	// ends with last and has between minLen and maxLen letters, most frequent first.
	Candidates(first, last rune, minLen, maxLen int) []string

	// Contains reports whether word is a dictionary word.
	Contains(word string) bool

	// FrequencyRank returns the rank of word, 0 being the most frequent.
	FrequencyRank(word string) (uint32, bool)
}

// Candidate is one scored word. Lower scores are better.
type Candidate struct {
	Word        string  `msgpack:"w"`
	Score       float64 `msgpack:"sc"`
	Contraction bool    `msgpack:"ct,omitempty"`
}

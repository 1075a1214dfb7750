/*
Package dictionary holds the frequency-ranked word list the decoder searches.

An Index is built once from an ordered word list (position = frequency rank,
0 = most frequent) and is read-only afterwards, so a single Index can be
shared by any number of concurrent decoders.

	idx := dictionary.Build([]string{"the", "of", "and"})
	idx.Candidates('t', 'e', 2, 5) // ["the"]
	idx.PrefixMatches("th", 10)    // rank-ordered completions

Word lists come from a newline-delimited text file or from the chunked binary
format (dict_0001.bin, dict_0002.bin, ...) written by swipectl build-dict.
*/
package dictionary

import (
	"sort"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is one dictionary word with its frequency rank.
type Entry struct {
	Word string
	Rank uint32
}

type bucketKey struct {
	first, last rune
}

// Index answers candidate, membership, rank and prefix queries over a fixed
// word list.
type Index struct {
	entries []Entry
	letters []int // letter count of each entry, aligned with entries
	ranks   map[string]uint32
	buckets map[bucketKey][]int
	trie    *patricia.Trie
}

// Build indexes words in order. Words are normalized; empty lines, invalid
// words and repeats are skipped without consuming a rank.
func Build(words []string) *Index {
	idx := &Index{
		entries: make([]Entry, 0, len(words)),
		letters: make([]int, 0, len(words)),
		ranks:   make(map[string]uint32, len(words)),
		buckets: make(map[bucketKey][]int),
		trie:    patricia.NewTrie(),
	}

	seen := utils.NewSeenFilter()
	skipped := 0
	for _, raw := range words {
		word := utils.NormalizeWord(raw)
		if !utils.IsValidWord(word) || !seen.ShouldInclude(word) {
			skipped++
			continue
		}
		idx.add(word)
	}

	if skipped > 0 {
		log.Debugf("Dictionary: skipped %d invalid or duplicate lines", skipped)
	}
	log.Debugf("Dictionary: indexed %d words in %d first/last buckets", len(idx.entries), len(idx.buckets))
	return idx
}

func (idx *Index) add(word string) {
	letters := []rune(utils.LettersOnly(word))
	rank := uint32(len(idx.entries))
	pos := len(idx.entries)

	idx.entries = append(idx.entries, Entry{Word: word, Rank: rank})
	idx.letters = append(idx.letters, len(letters))
	idx.ranks[word] = rank
	idx.trie.Insert(patricia.Prefix(word), rank)

	key := bucketKey{first: letters[0], last: letters[len(letters)-1]}
	idx.buckets[key] = append(idx.buckets[key], pos)
}

// Len returns the number of indexed words.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns the ordered word list. The slice must not be modified.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return idx.entries
}

// Candidates returns, in rank order, every word whose letters-only spelling
// starts with first, ends with last and has between minLen and maxLen letters.
func (idx *Index) Candidates(first, last rune, minLen, maxLen int) []string {
	if idx == nil {
		return nil
	}
	positions := idx.buckets[bucketKey{first: first, last: last}]
	var out []string
	for _, pos := range positions {
		if n := idx.letters[pos]; n >= minLen && n <= maxLen {
			out = append(out, idx.entries[pos].Word)
		}
	}
	return out
}

// Contains reports whether word is in the dictionary.
func (idx *Index) Contains(word string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.ranks[word]
	return ok
}

// FrequencyRank returns the rank of word, 0 being the most frequent.
func (idx *Index) FrequencyRank(word string) (uint32, bool) {
	if idx == nil {
		return 0, false
	}
	rank, ok := idx.ranks[word]
	return rank, ok
}

// PrefixMatches returns up to limit words starting with prefix, most frequent
// first. A limit <= 0 returns every match.
func (idx *Index) PrefixMatches(prefix string, limit int) []string {
	if idx == nil {
		return nil
	}

	var matches []Entry
	err := idx.trie.VisitSubtree(patricia.Prefix(utils.NormalizeWord(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		rank, ok := item.(uint32)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		matches = append(matches, Entry{Word: string(p), Rank: rank})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.Word
	}
	return words
}

// Stats returns basic statistics about the index.
func (idx *Index) Stats() map[string]int {
	if idx == nil {
		return map[string]int{"totalWords": 0, "buckets": 0}
	}
	return map[string]int{
		"totalWords": idx.Len(),
		"buckets":    len(idx.buckets),
	}
}

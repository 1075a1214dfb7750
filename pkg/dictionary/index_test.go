package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWords = []string{
	"the", "of", "and", "to", "he", "hello", "help", "there", "they", "then",
	"don't", "dont", "hole", "heel", "The", "", "  ", "h3llo", "e-mail",
}

func TestBuildRanksAndSkips(t *testing.T) {
	idx := Build(testWords)

	// "The", blanks and "h3llo" are dropped without consuming a rank.
	require.Equal(t, 15, idx.Len())

	rank, ok := idx.FrequencyRank("the")
	require.True(t, ok)
	assert.Equal(t, uint32(0), rank)

	rank, ok = idx.FrequencyRank("hello")
	require.True(t, ok)
	assert.Equal(t, uint32(5), rank)

	rank, ok = idx.FrequencyRank("e-mail")
	require.True(t, ok)
	assert.Equal(t, uint32(14), rank)

	assert.True(t, idx.Contains("don't"))
	assert.False(t, idx.Contains("h3llo"))
	assert.False(t, idx.Contains("The"))
}

func TestCandidatesByFirstLastAndLength(t *testing.T) {
	idx := Build(testWords)

	assert.Equal(t, []string{"the", "there"}, idx.Candidates('t', 'e', 2, 5))
	assert.Equal(t, []string{"the"}, idx.Candidates('t', 'e', 2, 4))
	assert.Equal(t, []string{"heel"}, idx.Candidates('h', 'l', 4, 4))
	assert.Equal(t, []string{"hole"}, idx.Candidates('h', 'e', 4, 4))

	// apostrophes do not count as letters
	assert.Equal(t, []string{"don't", "dont"}, idx.Candidates('d', 't', 4, 4))
	assert.Equal(t, []string{"e-mail"}, idx.Candidates('e', 'l', 5, 5))

	assert.Empty(t, idx.Candidates('x', 'y', 1, 20))
}

func TestPrefixMatchesRankOrdered(t *testing.T) {
	idx := Build(testWords)

	assert.Equal(t, []string{"he", "hello", "help", "hole", "heel"}, idx.PrefixMatches("h", 0))
	assert.Equal(t, []string{"he", "hello"}, idx.PrefixMatches("He", 2))
	assert.Equal(t, []string{"the", "there", "they", "then"}, idx.PrefixMatches("th", 10))
	assert.Empty(t, idx.PrefixMatches("zz", 10))
}

func TestEmptyAndNilIndex(t *testing.T) {
	for name, idx := range map[string]*Index{"empty": Build(nil), "nil": nil} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0, idx.Len())
			assert.Empty(t, idx.Candidates('a', 'a', 0, 100))
			assert.Empty(t, idx.PrefixMatches("a", 5))
			assert.False(t, idx.Contains("a"))
			_, ok := idx.FrequencyRank("a")
			assert.False(t, ok)
			assert.Equal(t, 0, idx.Stats()["totalWords"])
		})
	}
}

package decoder

import (
	"strings"

	"github.com/bastiangx/swipeserve/internal/utils"
)

// Contraction maps an apostrophe-free spelling to its literal form.
type Contraction struct {
	Stripped string `toml:"stripped"`
	Literal  string `toml:"literal"`
}

// Contractions is an ordered contraction table. A contraction's position in
// the table is its frequency rank.
type Contractions struct {
	entries []Contraction
	byKey   map[bucket][]int
}

type bucket struct {
	first, last rune
}

var defaultContractions = []Contraction{
	{"dont", "don't"}, {"im", "i'm"}, {"its", "it's"}, {"thats", "that's"},
	{"cant", "can't"}, {"ill", "i'll"}, {"ive", "i've"}, {"youre", "you're"},
	{"didnt", "didn't"}, {"doesnt", "doesn't"}, {"isnt", "isn't"}, {"wont", "won't"},
	{"id", "i'd"}, {"theyre", "they're"}, {"theres", "there's"}, {"wasnt", "wasn't"},
	{"lets", "let's"}, {"youll", "you'll"}, {"youve", "you've"}, {"hes", "he's"},
	{"shes", "she's"}, {"whats", "what's"}, {"couldnt", "couldn't"}, {"wouldnt", "wouldn't"},
	{"shouldnt", "shouldn't"}, {"arent", "aren't"}, {"werent", "weren't"}, {"havent", "haven't"},
	{"hasnt", "hasn't"}, {"hadnt", "hadn't"}, {"weve", "we've"}, {"well", "we'll"},
	{"were", "we're"}, {"theyll", "they'll"}, {"theyve", "they've"}, {"youd", "you'd"},
	{"hed", "he'd"}, {"shed", "she'd"}, {"itll", "it'll"}, {"wheres", "where's"},
	{"whos", "who's"}, {"heres", "here's"}, {"aint", "ain't"}, {"shant", "shan't"},
	{"mustnt", "mustn't"}, {"neednt", "needn't"}, {"wed", "we'd"}, {"theyd", "they'd"},
	{"thatll", "that'll"}, {"whatre", "what're"}, {"hows", "how's"}, {"whens", "when's"},
	{"whys", "why's"}, {"yall", "y'all"},
}

// DefaultContractions returns the common English contraction table.
func DefaultContractions() *Contractions {
	return NewContractions(defaultContractions)
}

// NewContractions builds a table from pairs. Stripped spellings are reduced
// to lowercase letters; pairs with an empty stripped form or a repeated one
// are skipped.
func NewContractions(pairs []Contraction) *Contractions {
	c := &Contractions{byKey: make(map[bucket][]int)}
	seen := utils.NewSeenFilter()
	for _, p := range pairs {
		stripped := utils.LettersOnly(utils.NormalizeWord(p.Stripped))
		first, last, ok := utils.FirstLast(stripped)
		if !ok || !seen.ShouldInclude(stripped) {
			continue
		}
		literal := strings.TrimSpace(p.Literal)
		if literal == "" {
			literal = stripped
		}
		key := bucket{first: first, last: last}
		c.byKey[key] = append(c.byKey[key], len(c.entries))
		c.entries = append(c.entries, Contraction{Stripped: stripped, Literal: literal})
	}
	return c
}

// Len returns the number of contractions.
func (c *Contractions) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns the table in order. The slice must not be modified.
func (c *Contractions) Entries() []Contraction {
	if c == nil {
		return nil
	}
	return c.entries
}

// Lookup returns the literal form of a stripped spelling.
func (c *Contractions) Lookup(stripped string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, i := range c.byKey[firstLastKey(stripped)] {
		if c.entries[i].Stripped == stripped {
			return c.entries[i].Literal, true
		}
	}
	return "", false
}

// candidates yields table positions matching the end letters and length range.
func (c *Contractions) candidates(first, last rune, minLen, maxLen int) []int {
	if c == nil {
		return nil
	}
	var out []int
	for _, i := range c.byKey[bucket{first: first, last: last}] {
		if n := len([]rune(c.entries[i].Stripped)); n >= minLen && n <= maxLen {
			out = append(out, i)
		}
	}
	return out
}

func firstLastKey(s string) bucket {
	first, last, _ := utils.FirstLast(s)
	return bucket{first: first, last: last}
}

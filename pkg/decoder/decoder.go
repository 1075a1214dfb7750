package decoder

import (
	"strings"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/charmbracelet/log"
)

// Decoder turns weighted key hits into ranked words. It holds no per-gesture
// state and is safe for concurrent use as long as its Lexicon is.
type Decoder struct {
	lexicon      Lexicon
	contractions *Contractions
	params       Params
}

// New creates a decoder over lexicon. contractions may be nil.
func New(lexicon Lexicon, contractions *Contractions, params Params) *Decoder {
	return &Decoder{
		lexicon:      lexicon,
		contractions: contractions,
		params:       params,
	}
}

// Params returns the scoring weights in effect.
func (d *Decoder) Params() Params {
	return d.params
}

// Decode returns the best word for hits.
func (d *Decoder) Decode(hits []gesture.WeightedKeyHit) (string, bool) {
	words := d.DecodeTopN(hits, 1)
	if len(words) == 0 {
		return "", false
	}
	return words[0], true
}

// DecodeTopN returns up to n words, best first. An empty result means no
// candidate survived and nothing should be inserted.
func (d *Decoder) DecodeTopN(hits []gesture.WeightedKeyHit, n int) []string {
	ranked := d.Rank(hits, n)
	words := make([]string, len(ranked))
	for i, c := range ranked {
		words[i] = c.Word
	}
	return words
}

type endChoice struct {
	last    rune
	penalty float64
}

// Rank is DecodeTopN with scores.
func (d *Decoder) Rank(hits []gesture.WeightedKeyHit, n int) []Candidate {
	if n <= 0 || len(hits) == 0 || d.lexicon == nil {
		return nil
	}
	// an empty dictionary never matches, contractions included
	if sized, ok := d.lexicon.(interface{ Len() int }); ok && sized.Len() == 0 {
		return nil
	}

	var anchors []gesture.WeightedKeyHit
	for _, h := range hits {
		if h.Weight >= d.params.AnchorWeight {
			anchors = append(anchors, h)
		}
	}

	first := hits[0].Key.Char
	ends := []endChoice{{last: hits[len(hits)-1].Key.Char}}
	if len(anchors) > 0 {
		ends[0].last = anchors[len(anchors)-1].Key.Char
	}
	if len(anchors) >= 2 {
		if alt := anchors[len(anchors)-2].Key.Char; alt != ends[0].last {
			ends = append(ends, endChoice{last: alt, penalty: d.params.SecondaryEndPenalty})
		}
	}

	minLen := max(2, len(anchors)-2)
	if len(hits) == 1 {
		minLen = 1
	}
	maxLen := max(len(hits), len(anchors)+3)

	g := newGestureView(hits)
	best := newTopN(n)
	scored := 0

	for _, end := range ends {
		for _, word := range d.lexicon.Candidates(first, end.last, minLen, maxLen) {
			cost, ok := d.align(g, utils.LettersOnly(strings.ToLower(word)))
			if !ok {
				continue
			}
			scored++
			rank, _ := d.lexicon.FrequencyRank(word)
			best.add(Candidate{Word: word, Score: cost + d.frequencyCost(rank) + end.penalty})
		}

		for _, i := range d.contractions.candidates(first, end.last, minLen, maxLen) {
			c := d.contractions.entries[i]
			cost, ok := d.align(g, c.Stripped)
			if !ok {
				continue
			}
			scored++
			cost += d.frequencyCost(uint32(i)) + end.penalty
			if !d.lexicon.Contains(c.Stripped) {
				cost -= d.params.ContractionBonus
			}
			best.add(Candidate{Word: c.Literal, Score: cost, Contraction: true})
		}
	}

	out := best.list()
	log.Debugf("Decoder: %d hits (%d anchors), %d aligned, %d kept", len(hits), len(anchors), scored, len(out))
	return out
}

// topN keeps the n lowest-scoring candidates with unique words. Equal scores
// keep insertion order.
type topN struct {
	n     int
	items []Candidate
}

func newTopN(n int) *topN {
	return &topN{n: n, items: make([]Candidate, 0, n+1)}
}

func (t *topN) add(c Candidate) {
	for i, existing := range t.items {
		if existing.Word != c.Word {
			continue
		}
		if existing.Score <= c.Score {
			return
		}
		t.items = append(t.items[:i], t.items[i+1:]...)
		break
	}

	if len(t.items) == t.n && c.Score >= t.items[len(t.items)-1].Score {
		return
	}

	at := len(t.items)
	for i, existing := range t.items {
		if c.Score < existing.Score {
			at = i
			break
		}
	}
	t.items = append(t.items, Candidate{})
	copy(t.items[at+1:], t.items[at:])
	t.items[at] = c
	if len(t.items) > t.n {
		t.items = t.items[:t.n]
	}
}

func (t *topN) list() []Candidate {
	return t.items
}

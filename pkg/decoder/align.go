package decoder

import (
	"math"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/gesture"
)

// gestureView caches what every alignment needs to know about the hits.
type gestureView struct {
	hits     []gesture.WeightedKeyHit
	chars    []rune
	keyCount map[rune]int
}

func newGestureView(hits []gesture.WeightedKeyHit) *gestureView {
	g := &gestureView{
		hits:     hits,
		chars:    make([]rune, len(hits)),
		keyCount: make(map[rune]int, len(hits)),
	}
	for i, h := range hits {
		g.chars[i] = h.Key.Char
		g.keyCount[h.Key.Char]++
	}
	return g
}

// align scores letters (a lowercase letters-only spelling) against the
// gesture. The frequency term is left to the caller. It reports false when
// the word is rejected outright.
func (d *Decoder) align(g *gestureView, letters string) (float64, bool) {
	collapsed := utils.Collapse(letters)
	if len(collapsed) == 0 || len(g.hits) == 0 {
		return 0, false
	}
	if collapsed[0].Char != g.chars[0] {
		return 0, false
	}

	p := d.params
	used := make([]bool, len(g.hits))
	first, last := -1, -1
	misses := 0
	cost := 0.0
	lastMatched := false

	pos := 0
	for i, cr := range collapsed {
		at := -1
		for j := pos; j < len(g.chars); j++ {
			if g.chars[j] == cr.Char {
				at = j
				break
			}
		}

		if at < 0 {
			misses++
			if g.keyCount[cr.Char] > 0 {
				cost += p.NearPathMiss
			} else {
				cost += p.AbsentMiss
			}
			continue
		}

		used[at] = true
		cost += p.AlignmentWeight * (1 - g.hits[at].Weight)
		if first < 0 {
			first = at
		}
		last = at
		pos = at + 1

		// a doubled letter may take the repeated hit the tracker emits for it
		if cr.Double && pos < len(g.chars) && g.chars[pos] == cr.Char {
			used[pos] = true
			cost += p.AlignmentWeight * (1 - g.hits[pos].Weight)
			last = pos
			pos++
		}
		if i == len(collapsed)-1 {
			lastMatched = true
		}
	}

	if misses*2 > len(collapsed) {
		return 0, false
	}
	if !lastMatched && len([]rune(letters)) > 3 {
		return 0, false
	}

	for j, h := range g.hits {
		if !used[j] && h.Weight >= p.AnchorWeight {
			cost += p.UnmatchedAnchor * h.Weight
		}
	}

	if first >= 0 {
		span := float64(last - first + 1)
		cost += (1 - span/float64(len(g.hits))) * p.Coverage
	} else {
		cost += p.Coverage
	}

	cost -= p.LengthBonus * float64(len(collapsed))

	for _, cr := range collapsed {
		if cr.Double && g.keyCount[cr.Char] < 2 {
			cost += p.DoublePenalty
		}
	}
	return cost, true
}

// frequencyCost grows with rank and levels off at FrequencyCap.
func (d *Decoder) frequencyCost(rank uint32) float64 {
	return d.params.FrequencyWeight * math.Min(math.Log1p(float64(rank)), d.params.FrequencyCap)
}

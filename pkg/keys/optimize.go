package keys

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

const alphabet = 26

// LetterStats holds letter and bigram frequencies, each summing to 100.
type LetterStats struct {
	Letters [alphabet]float64
	Bigrams [alphabet][alphabet]float64
}

// StatsFromWords derives LetterStats from a frequency-ordered word list. The
// word at rank r counts 1/(r+1), so the head of the list dominates. Letters
// outside a-z are skipped and doubled letters add no bigram.
func StatsFromWords(words []string) LetterStats {
	var s LetterStats
	for rank, word := range words {
		weight := 1 / float64(rank+1)
		prev := -1
		for _, c := range strings.ToLower(word) {
			if c < 'a' || c > 'z' {
				continue
			}
			i := int(c - 'a')
			s.Letters[i] += weight
			if prev >= 0 && prev != i {
				s.Bigrams[prev][i] += weight
			}
			prev = i
		}
	}

	letterSum, bigramSum := 0.0, 0.0
	for i := range s.Letters {
		letterSum += s.Letters[i]
		for j := range s.Bigrams[i] {
			bigramSum += s.Bigrams[i][j]
		}
	}
	for i := range s.Letters {
		if letterSum > 0 {
			s.Letters[i] *= 100 / letterSum
		}
		for j := range s.Bigrams[i] {
			if bigramSum > 0 {
				s.Bigrams[i][j] *= 100 / bigramSum
			}
		}
	}
	return s
}

// AnnealOptions tunes OptimizeRing.
type AnnealOptions struct {
	Runs       int     `toml:"runs"`
	Iterations int     `toml:"iterations"`
	Cooling    float64 `toml:"cooling"`
	Seed       int64   `toml:"seed"`
	// CenterWeight pulls frequent letters onto the inner ring.
	CenterWeight float64 `toml:"center_weight"`
	// ReachWeight pulls frequent letters away from the bottom-right, the
	// hardest corner for a right thumb.
	ReachWeight float64 `toml:"reach_weight"`
}

func DefaultAnnealOptions() AnnealOptions {
	return AnnealOptions{
		Runs:         5,
		Iterations:   200000,
		Cooling:      0.9995,
		Seed:         1,
		CenterWeight: 8,
		ReachWeight:  2,
	}
}

// ringModel precomputes everything the energy needs per slot. Slot distances
// are measured in inner radii so the weights do not depend on screen size.
type ringModel struct {
	dist   [alphabet][alphabet]float64
	center [alphabet]float64
	reach  [alphabet]float64
	stats  LetterStats
	opts   AnnealOptions
}

func newRingModel(g RingGeometry, stats LetterStats, opts AnnealOptions) (*ringModel, error) {
	if g.InnerSlots+g.OuterSlots != alphabet {
		return nil, fmt.Errorf("ring has %d slots, need %d", g.InnerSlots+g.OuterSlots, alphabet)
	}
	if g.InnerRadius <= 0 || g.OuterRadius <= 0 {
		return nil, fmt.Errorf("ring radii must be positive")
	}

	var xs, ys [alphabet]float64
	slot := 0
	for _, ring := range []struct {
		n      int
		radius float64
	}{{g.InnerSlots, g.InnerRadius}, {g.OuterSlots, g.OuterRadius}} {
		r := ring.radius / g.InnerRadius
		for _, a := range g.SlotAngles(ring.n) {
			rad := a * math.Pi / 180
			xs[slot], ys[slot] = r*math.Cos(rad), r*math.Sin(rad)
			slot++
		}
	}

	m := &ringModel{stats: stats, opts: opts}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < alphabet; i++ {
		for j := i + 1; j < alphabet; j++ {
			d := math.Hypot(xs[i]-xs[j], ys[i]-ys[j])
			m.dist[i][j], m.dist[j][i] = d, d
		}
		m.center[i] = math.Hypot(xs[i], ys[i])
		// y points up here, so bottom-right has a large x-y
		m.reach[i] = xs[i] - ys[i]
		lo, hi = math.Min(lo, m.reach[i]), math.Max(hi, m.reach[i])
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i := range m.reach {
		m.reach[i] = (m.reach[i] - lo) / span
	}
	return m, nil
}

// energy is low when frequent bigrams sit far apart, which keeps swipe paths
// distinct, and when frequent letters sit near the centre within easy reach.
// pos maps a letter to its slot.
func (m *ringModel) energy(pos *[alphabet]int) float64 {
	bigram, center, reach := 0.0, 0.0, 0.0
	for i := 0; i < alphabet; i++ {
		for j := 0; j < alphabet; j++ {
			if f := m.stats.Bigrams[i][j]; f > 0 {
				bigram += f * m.dist[pos[i]][pos[j]]
			}
		}
		center += m.stats.Letters[i] * m.center[pos[i]]
		reach += m.stats.Letters[i] * m.reach[pos[i]]
	}
	return -bigram + m.opts.CenterWeight*center + m.opts.ReachWeight*reach
}

// swapDelta is the energy change from swapping the letters in slots a and b.
func (m *ringModel) swapDelta(state []int, pos *[alphabet]int, a, b int) float64 {
	l1, l2 := state[a], state[b]
	f := &m.stats.Bigrams
	bigram := 0.0
	for k := 0; k < alphabet; k++ {
		if k == l1 || k == l2 {
			continue
		}
		pk := pos[k]
		if w := f[l1][k] + f[k][l1]; w > 0 {
			bigram += w * (m.dist[b][pk] - m.dist[a][pk])
		}
		if w := f[l2][k] + f[k][l2]; w > 0 {
			bigram += w * (m.dist[a][pk] - m.dist[b][pk])
		}
	}
	freq := &m.stats.Letters
	center := freq[l1]*(m.center[b]-m.center[a]) + freq[l2]*(m.center[a]-m.center[b])
	reach := freq[l1]*(m.reach[b]-m.reach[a]) + freq[l2]*(m.reach[a]-m.reach[b])
	return -bigram + m.opts.CenterWeight*center + m.opts.ReachWeight*reach
}

// anneal runs one simulated annealing pass from a random arrangement and
// returns the best state seen, indexed by slot.
func (m *ringModel) anneal(rng *rand.Rand) ([]int, float64) {
	state := rng.Perm(alphabet)
	var pos [alphabet]int
	for slot, letter := range state {
		pos[letter] = slot
	}
	current := m.energy(&pos)

	pick := func() (int, int) {
		a := rng.Intn(alphabet)
		b := rng.Intn(alphabet - 1)
		if b >= a {
			b++
		}
		return a, b
	}

	// start where a median move is accepted 80% of the time
	deltas := make([]float64, 1000)
	for i := range deltas {
		a, b := pick()
		deltas[i] = math.Abs(m.swapDelta(state, &pos, a, b))
	}
	sort.Float64s(deltas)
	temp := -deltas[len(deltas)/2] / math.Log(0.8)
	if temp <= 0 {
		temp = 1
	}

	best := append([]int(nil), state...)
	bestEnergy := current
	for step := 0; step < m.opts.Iterations; step++ {
		a, b := pick()
		delta := m.swapDelta(state, &pos, a, b)
		if delta < 0 || rng.Float64() < math.Exp(-delta/temp) {
			pos[state[a]], pos[state[b]] = b, a
			state[a], state[b] = state[b], state[a]
			current += delta
			if current < bestEnergy {
				bestEnergy = current
				copy(best, state)
			}
		}
		temp *= m.opts.Cooling
	}
	return best, bestEnergy
}

// parseOrder maps every letter of a 26-letter arrangement to its slot.
func parseOrder(order string) ([alphabet]int, error) {
	var pos [alphabet]int
	seen := 0
	if len(order) != alphabet {
		return pos, fmt.Errorf("ring order %q must hold each of a-z once", order)
	}
	for slot, c := range strings.ToLower(order) {
		if c < 'a' || c > 'z' || seen&(1<<(c-'a')) != 0 {
			return pos, fmt.Errorf("ring order %q must hold each of a-z once", order)
		}
		seen |= 1 << (c - 'a')
		pos[c-'a'] = slot
	}
	return pos, nil
}

// RingEnergy scores a 26-letter ring order on g. Lower is better.
func RingEnergy(order string, g RingGeometry, stats LetterStats, opts AnnealOptions) (float64, error) {
	m, err := newRingModel(g, stats, opts)
	if err != nil {
		return 0, err
	}
	pos, err := parseOrder(order)
	if err != nil {
		return 0, err
	}
	return m.energy(&pos), nil
}

// OptimizeRing searches for the ring order with the lowest RingEnergy by
// simulated annealing and keeps the best of opts.Runs seeded runs. The result
// is reproducible for a given seed.
func OptimizeRing(g RingGeometry, stats LetterStats, opts AnnealOptions) (string, float64, error) {
	m, err := newRingModel(g, stats, opts)
	if err != nil {
		return "", 0, err
	}
	runs := max(opts.Runs, 1)

	var best []int
	bestEnergy := math.Inf(1)
	for run := 0; run < runs; run++ {
		state, energy := m.anneal(rand.New(rand.NewSource(opts.Seed + int64(run))))
		if energy < bestEnergy {
			best, bestEnergy = state, energy
		}
	}

	order := make([]byte, alphabet)
	for slot, letter := range best {
		order[slot] = byte('a' + letter)
	}
	return string(order), bestEnergy, nil
}

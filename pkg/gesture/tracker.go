/*
Package gesture turns a raw swipe path into weighted key hits.

A Tracker records one gesture at a time:

	tr := gesture.NewTracker(layout, gesture.DefaultParams())
	tr.Begin(p0, t0, nil)
	for _, s := range samples {
		tr.AddSample(s.Position, s.Time) // updates tr.CurrentKey() for highlighting
	}
	hits := tr.Finalize()

Finalize runs over the whole recorded path because speed smoothing needs
both neighbours of every sample. Slow stretches of the path (dwells) become
anchors with a weight derived from how slow the finger was; keys crossed
between anchors become low-weight pass-through hits; small loops drawn over
a key add a second hit for that key so the decoder can match double letters.
The first and last hits always carry weight 1.0.

A Tracker is not safe for concurrent use. Begin resets it in place so one
instance can serve every gesture of a session.
*/
package gesture

import (
	"math"
	"slices"

	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/charmbracelet/log"
)

// minTurnSegment is the shortest movement that contributes a heading for
// loop detection; shorter moves count as a sample without turning.
const minTurnSegment = 0.5

// maxLoopTurn is the largest heading change per sample a loop can make.
// Sharper changes are reversals, which draw no circle whatever their sign.
const maxLoopTurn = 170.0

// TimestampedPoint is one raw touch sample. Time is in monotonic seconds.
type TimestampedPoint struct {
	Position keys.Point `msgpack:"p"`
	Time     float64    `msgpack:"t"`
}

// WeightedKeyHit is one key in the decoded gesture.
type WeightedKeyHit struct {
	Key         keys.KeyDescriptor
	Weight      float64
	SampleIndex int
}

// IsAnchor reports whether the hit is a high-confidence target.
func (h WeightedKeyHit) IsAnchor() bool {
	return h.Weight >= AnchorWeight
}

// AnchorWeight is the minimum weight of an anchor hit.
const AnchorWeight = 0.5

type sample struct {
	TimestampedPoint
	layout keys.KeyLookup
}

// turnStep is the heading change of one sample and the move that made it.
type turnStep struct {
	turn     float64
	from, to keys.Point
}

type loopEvent struct {
	key    keys.KeyDescriptor
	sample int
}

// Tracker accumulates samples for a single gesture.
type Tracker struct {
	params Params
	layout keys.KeyLookup

	active     bool
	samples    []sample
	initial    keys.KeyDescriptor
	hasInitial bool

	current    keys.KeyDescriptor
	hasCurrent bool

	turns   []turnStep
	turnSum float64
	lastDir keys.Point
	hasDir  bool
	loops   []loopEvent
}

// NewTracker creates an idle tracker over layout.
func NewTracker(layout keys.KeyLookup, params Params) *Tracker {
	return &Tracker{
		params:  params.sanitized(),
		layout:  layout,
		samples: make([]sample, 0, 256),
	}
}

// Params returns the tuning in effect.
func (t *Tracker) Params() Params {
	return t.params
}

// SetParams replaces the tuning. It takes effect at the next Begin.
func (t *Tracker) SetParams(params Params) {
	t.params = params.sanitized()
}

// SetLayout switches the layout used for samples added from now on.
// Samples already recorded keep resolving against their own layout.
func (t *Tracker) SetLayout(layout keys.KeyLookup) {
	t.layout = layout
}

// Layout returns the layout new samples are recorded against.
func (t *Tracker) Layout() keys.KeyLookup {
	return t.layout
}

// Active reports whether a gesture is in progress.
func (t *Tracker) Active() bool {
	return t.active
}

// Begin starts a new gesture at p. initialKey, if non-nil, is the key the
// touch landed on as reported by the host and resolves the first anchor.
func (t *Tracker) Begin(p keys.Point, timestamp float64, initialKey *keys.KeyDescriptor) {
	t.active = true
	t.samples = t.samples[:0]
	t.turns = t.turns[:0]
	t.turnSum = 0
	t.hasDir = false
	t.loops = t.loops[:0]
	t.hasCurrent = false

	t.hasInitial = initialKey != nil
	if initialKey != nil {
		t.initial = *initialKey
	}

	t.samples = append(t.samples, sample{
		TimestampedPoint: TimestampedPoint{Position: p, Time: timestamp},
		layout:           t.layout,
	})
	if t.hasInitial {
		t.current, t.hasCurrent = t.initial, true
	} else {
		t.updateCurrent(p)
	}
}

// AddSample records a movement sample. It is ignored when no gesture is active.
func (t *Tracker) AddSample(p keys.Point, timestamp float64) {
	if !t.active {
		log.Debug("Tracker: sample outside of a gesture ignored")
		return
	}
	prev := t.samples[len(t.samples)-1]
	if timestamp < prev.Time {
		timestamp = prev.Time
	}
	t.samples = append(t.samples, sample{
		TimestampedPoint: TimestampedPoint{Position: p, Time: timestamp},
		layout:           t.layout,
	})
	t.updateCurrent(p)
	t.trackTurn(prev.Position, p)
}

// CurrentKey returns the key to highlight under the finger, if any.
func (t *Tracker) CurrentKey() (keys.KeyDescriptor, bool) {
	return t.current, t.hasCurrent
}

// SampleCount returns the number of samples in the current gesture.
func (t *Tracker) SampleCount() int {
	return len(t.samples)
}

func (t *Tracker) updateCurrent(p keys.Point) {
	if t.layout == nil {
		t.hasCurrent = false
		return
	}
	t.current, t.hasCurrent = t.layout.NearestWeighted(p, t.params.ProximityRadius)
}

// trackTurn accumulates the signed heading change over the last LoopWindow
// samples and records a loop once it exceeds LoopTurnDegrees within a
// stretch of path no wider than ProximityRadius.
func (t *Tracker) trackTurn(from, to keys.Point) {
	dir := to.Sub(from)
	turn := 0.0
	switch {
	case math.Hypot(dir.X, dir.Y) < minTurnSegment:
	case !t.hasDir:
		t.lastDir, t.hasDir = dir, true
	default:
		cross := t.lastDir.X*dir.Y - t.lastDir.Y*dir.X
		dot := t.lastDir.X*dir.X + t.lastDir.Y*dir.Y
		turn = math.Atan2(cross, dot) * 180 / math.Pi
		t.lastDir = dir
		if math.Abs(turn) > maxLoopTurn {
			turn = 0
		}
	}

	t.turns = append(t.turns, turnStep{turn: turn, from: from, to: to})
	t.turnSum += turn
	if len(t.turns) > t.params.LoopWindow {
		t.turnSum -= t.turns[0].turn
		t.turns = t.turns[1:]
	}

	if math.Abs(t.turnSum) <= t.params.LoopTurnDegrees || !t.loopIsCompact() {
		return
	}

	key, ok := t.current, t.hasCurrent
	if !ok && t.layout != nil {
		key, ok = t.layout.Nearest(to, t.params.AnchorRadius())
	}
	if ok {
		t.loops = append(t.loops, loopEvent{key: key, sample: len(t.samples) - 1})
		log.Debugf("Tracker: loop over %q at sample %d", key.Char, len(t.samples)-1)
	}
	t.turns = t.turns[:0]
	t.turnSum = 0
}

// loopIsCompact reports whether the shortest recent stretch that turns past
// LoopTurnDegrees fits within ProximityRadius. Corners of a path crossing
// several keys can add up to a full turn; a loop over one key cannot be
// wider than the key.
func (t *Tracker) loopIsCompact() bool {
	sum, i := 0.0, len(t.turns)
	for i > 0 && math.Abs(sum) <= t.params.LoopTurnDegrees {
		i--
		sum += t.turns[i].turn
	}
	minP, maxP := t.turns[i].from, t.turns[i].from
	for _, st := range t.turns[i:] {
		for _, p := range [2]keys.Point{st.from, st.to} {
			minP = keys.Pt(math.Min(minP.X, p.X), math.Min(minP.Y, p.Y))
			maxP = keys.Pt(math.Max(maxP.X, p.X), math.Max(maxP.Y, p.Y))
		}
	}
	return minP.Dist(maxP) <= t.params.ProximityRadius
}

// Finalize ends the gesture and returns its weighted key hits in
// chronological order. It returns nil when no gesture is active.
func (t *Tracker) Finalize() []WeightedKeyHit {
	if !t.active {
		return nil
	}
	t.active = false
	defer func() {
		t.samples = t.samples[:0]
		t.loops = t.loops[:0]
	}()

	switch len(t.samples) {
	case 0:
		return nil
	case 1:
		return t.tap()
	}

	speeds := t.smoothedSpeeds()
	minima := t.velocityMinima(speeds)
	hits := t.resolveAnchors(minima, speeds)
	hits = t.mergeRepeatedAnchors(hits, speeds)
	hits = t.insertPassThroughs(hits)
	hits = t.insertLoopDoubles(hits)

	if len(hits) > 0 {
		hits[0].Weight = 1
		hits[len(hits)-1].Weight = 1
	}

	log.Debugf("Tracker: %d samples -> %d minima -> %d hits", len(t.samples), len(minima), len(hits))
	return hits
}

// tap resolves a single-sample gesture.
func (t *Tracker) tap() []WeightedKeyHit {
	key, ok := t.resolve(0)
	if !ok {
		return nil
	}
	return []WeightedKeyHit{{Key: key, Weight: 1, SampleIndex: 0}}
}

// resolve maps sample i to the nearest key within the anchor radius.
func (t *Tracker) resolve(i int) (keys.KeyDescriptor, bool) {
	if i == 0 && t.hasInitial {
		return t.initial, true
	}
	s := t.samples[i]
	if s.layout == nil {
		return keys.KeyDescriptor{}, false
	}
	return s.layout.Nearest(s.Position, t.params.AnchorRadius())
}

// smoothedSpeeds returns the centered moving average of per-sample speed.
func (t *Tracker) smoothedSpeeds() []float64 {
	n := len(t.samples)
	raw := make([]float64, n)
	for i := 1; i < n; i++ {
		dt := math.Max(t.samples[i].Time-t.samples[i-1].Time, t.params.MinTimeDelta)
		raw[i] = t.samples[i].Position.Dist(t.samples[i-1].Position) / dt
	}
	raw[0] = raw[1]

	half := t.params.SmoothingWindow / 2
	smoothed := make([]float64, n)
	for i := range raw {
		lo, hi := max(0, i-half), min(n-1, i+half)
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += raw[j]
		}
		smoothed[i] = sum / float64(hi-lo+1)
	}
	return smoothed
}

// velocityMinima returns the sample indices of dwell points, always starting
// with 0 and ending with the last sample.
func (t *Tracker) velocityMinima(speeds []float64) []int {
	n := len(speeds)
	minima := []int{0}
	for i := 1; i < n-1; i++ {
		if speeds[i] >= t.params.DwellSpeed || speeds[i] > speeds[i-1] || speeds[i] > speeds[i+1] {
			continue
		}
		last := len(minima) - 1
		if i-minima[last] < t.params.MergeDistance {
			// the start anchor is never displaced
			if minima[last] != 0 && speeds[i] < speeds[minima[last]] {
				minima[last] = i
			}
			continue
		}
		minima = append(minima, i)
	}

	end := n - 1
	last := len(minima) - 1
	switch {
	case minima[last] == end:
	case minima[last] != 0 && end-minima[last] < t.params.MergeDistance:
		minima[last] = end
	default:
		minima = append(minima, end)
	}
	return minima
}

// resolveAnchors maps minima to keys and weights, dropping minima with no key
// in reach.
func (t *Tracker) resolveAnchors(minima []int, speeds []float64) []WeightedKeyHit {
	end := len(t.samples) - 1
	hits := make([]WeightedKeyHit, 0, len(minima))
	for _, i := range minima {
		key, ok := t.resolve(i)
		if !ok {
			continue
		}
		weight := 1.0
		if i != 0 && i != end {
			weight = clamp(1-speeds[i]/t.params.ReferenceSpeed, t.params.MinAnchorWeight, 1)
		}
		hits = append(hits, WeightedKeyHit{Key: key, Weight: weight, SampleIndex: i})
	}
	return hits
}

// mergeRepeatedAnchors folds consecutive anchors on the same key into one
// unless the finger clearly sped up and slowed down again between them.
func (t *Tracker) mergeRepeatedAnchors(hits []WeightedKeyHit, speeds []float64) []WeightedKeyHit {
	end := len(t.samples) - 1
	out := make([]WeightedKeyHit, 0, len(hits))
	for _, h := range hits {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.Key.Index == h.Key.Index && !t.peakBetween(speeds, prev.SampleIndex, h.SampleIndex) {
				prev.Weight = math.Max(prev.Weight, h.Weight)
				if h.SampleIndex == end {
					prev.SampleIndex = end
				}
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

func (t *Tracker) peakBetween(speeds []float64, from, to int) bool {
	threshold := t.params.DoublePeakFactor * t.params.DwellSpeed
	for i := from + 1; i < to; i++ {
		if speeds[i] > threshold {
			return true
		}
	}
	return false
}

// insertPassThroughs adds a low-weight hit for each new key the path crosses
// between two consecutive anchors.
func (t *Tracker) insertPassThroughs(anchors []WeightedKeyHit) []WeightedKeyHit {
	out := make([]WeightedKeyHit, 0, len(anchors)*2)
	for i, a := range anchors {
		out = append(out, a)
		if i == len(anchors)-1 {
			break
		}
		b := anchors[i+1]
		seen := map[int]bool{a.Key.Index: true, b.Key.Index: true}
		for j := a.SampleIndex + 1; j < b.SampleIndex; j++ {
			s := t.samples[j]
			if s.layout == nil {
				continue
			}
			key, ok := s.layout.Nearest(s.Position, t.params.ProximityRadius)
			if !ok || seen[key.Index] {
				continue
			}
			seen[key.Index] = true
			out = append(out, WeightedKeyHit{Key: key, Weight: t.params.PassThroughWeight, SampleIndex: j})
		}
	}
	return out
}

// insertLoopDoubles duplicates the hit of every looped-over key that the
// velocity analysis only saw once.
func (t *Tracker) insertLoopDoubles(hits []WeightedKeyHit) []WeightedKeyHit {
	for _, ev := range t.loops {
		count, at := 0, -1
		for i, h := range hits {
			if h.Key.Index == ev.key.Index {
				count++
				at = i
			}
		}
		if count != 1 {
			continue
		}
		dup := hits[at]
		dup.Weight = t.params.LoopWeight
		hits = slices.Insert(hits, at+1, dup)
	}
	return hits
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Track runs a recorded gesture through a fresh tracker and returns its hits.
func Track(layout keys.KeyLookup, params Params, samples []TimestampedPoint) []WeightedKeyHit {
	if len(samples) == 0 {
		return nil
	}
	return replay(NewTracker(layout, params), samples)
}

func replay(t *Tracker, samples []TimestampedPoint) []WeightedKeyHit {
	t.Begin(samples[0].Position, samples[0].Time, nil)
	for _, s := range samples[1:] {
		t.AddSample(s.Position, s.Time)
	}
	return t.Finalize()
}

package gesture

import (
	"math"
	"testing"

	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

func chars(hits []WeightedKeyHit) string {
	out := make([]rune, len(hits))
	for i, h := range hits {
		out[i] = h.Key.Char
	}
	return string(out)
}

func count(hits []WeightedKeyHit, r rune) int {
	n := 0
	for _, h := range hits {
		if h.Key.Char == r {
			n++
		}
	}
	return n
}

func run(tr *Tracker, samples []TimestampedPoint) []WeightedKeyHit {
	return replay(tr, samples)
}

// path is a helper for hand-written gestures sampled at 60Hz.
type path struct {
	samples []TimestampedPoint
	now     float64
}

func (p *path) at(x, y float64) *path {
	p.samples = append(p.samples, TimestampedPoint{Position: keys.Pt(x, y), Time: p.now})
	p.now += dt
	return p
}

func (p *path) hold(x, y float64, n int) *path {
	for i := 0; i < n; i++ {
		p.at(x, y)
	}
	return p
}

func TestTrackerSlowApproachPauseMovePause(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{
		{Char: 'h', Position: keys.Pt(0, 0), Index: 0},
		{Char: 'e', Position: keys.Pt(10, 0), Index: 1},
	})

	p := &path{}
	p.at(-6, 0).at(-4, 0).at(-2, 0).at(-1, 0).
		hold(0, 0, 6).
		at(5, 0).
		hold(10, 0, 6)

	hits := run(NewTracker(layout, DefaultParams()), p.samples)
	require.Len(t, hits, 2)
	assert.Equal(t, "he", chars(hits))
	assert.Equal(t, 1.0, hits[0].Weight)
	assert.Equal(t, 1.0, hits[1].Weight)
	assert.Equal(t, 0, hits[0].SampleIndex)
	assert.Equal(t, len(p.samples)-1, hits[1].SampleIndex)
}

func TestTrackerTap(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	a, ok := keys.ByChar(grid, 'a')
	require.True(t, ok)

	tr := NewTracker(grid, DefaultParams())
	tr.Begin(a.Position, 0, nil)
	hits := tr.Finalize()
	require.Len(t, hits, 1)
	assert.Equal(t, 'a', hits[0].Key.Char)
	assert.Equal(t, 1.0, hits[0].Weight)

	tr.Begin(keys.Pt(-500, -500), 0, nil)
	assert.Empty(t, tr.Finalize())
}

func TestTrackerInitialKeyWins(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	q, _ := keys.ByChar(grid, 'q')
	a, _ := keys.ByChar(grid, 'a')

	tr := NewTracker(grid, DefaultParams())
	tr.Begin(a.Position, 0, &q)
	cur, ok := tr.CurrentKey()
	require.True(t, ok)
	assert.Equal(t, 'q', cur.Char)

	hits := tr.Finalize()
	require.Len(t, hits, 1)
	assert.Equal(t, 'q', hits[0].Key.Char)
}

func TestTrackerNoKeysNearPath(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{{Char: 'a', Position: keys.Pt(0, 0), Index: 0}})
	p := &path{}
	p.hold(500, 500, 4).at(520, 500).hold(540, 500, 4)

	assert.Empty(t, run(NewTracker(layout, DefaultParams()), p.samples))
}

func TestTrackerEndpointsAlwaysAnchored(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	ring := keys.NewRingLayout(keys.DefaultRingOrder, keys.DefaultRingGeometry())
	tr := NewTracker(grid, DefaultParams())

	for _, layout := range []keys.KeyLookup{grid, ring} {
		tr.SetLayout(layout)
		for _, word := range []string{"the", "world", "quiet", "people", "tomorrow", "a"} {
			hits := run(tr, Synthesize(word, layout, DefaultSynthOptions()))
			require.NotEmpty(t, hits, word)
			assert.Equal(t, 1.0, hits[0].Weight, word)
			assert.Equal(t, 1.0, hits[len(hits)-1].Weight, word)
			assert.Equal(t, rune(word[0]), hits[0].Key.Char, word)
			assert.Equal(t, rune(word[len(word)-1]), hits[len(hits)-1].Key.Char, word)
		}
	}
}

func TestTrackerDeterministic(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	samples := Synthesize("thought", grid, DefaultSynthOptions())

	first := run(NewTracker(grid, DefaultParams()), samples)
	tr := NewTracker(grid, DefaultParams())
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run(tr, samples))
	}
}

func TestTrackerDoubleLetters(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	tr := NewTracker(grid, DefaultParams())

	tests := []struct {
		word   string
		letter rune
		want   int
	}{
		{"hello", 'l', 2},
		{"helo", 'l', 1},
		{"see", 'e', 2},
		{"book", 'o', 2},
		{"coffee", 'f', 2},
		{"coffee", 'e', 2},
	}

	for _, loop := range []bool{false, true} {
		opts := DefaultSynthOptions()
		opts.LoopDoubles = loop
		for _, tt := range tests {
			hits := run(tr, Synthesize(tt.word, grid, opts))
			assert.Equal(t, tt.want, count(hits, tt.letter), "%s loop=%v: %s", tt.word, loop, chars(hits))
		}
	}

	hits := run(tr, Synthesize("hello", grid, DefaultSynthOptions()))
	var ls []WeightedKeyHit
	for _, h := range hits {
		if h.Key.Char == 'l' {
			ls = append(ls, h)
		}
	}
	require.Len(t, ls, 2)
	assert.True(t, ls[0].IsAnchor())
	assert.True(t, ls[1].IsAnchor())
	assert.Less(t, ls[0].SampleIndex, ls[1].SampleIndex)
}

func TestTrackerLongDwellIsOneHit(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{
		{Char: 'a', Position: keys.Pt(0, 0), Index: 0},
		{Char: 'b', Position: keys.Pt(100, 0), Index: 1},
	})
	p := &path{}
	p.hold(0, 0, 30)
	for i := 1; i < 7; i++ {
		p.at(100*float64(i)/7, 0)
	}
	p.hold(100, 0, 6)

	hits := run(NewTracker(layout, DefaultParams()), p.samples)
	assert.Equal(t, "ab", chars(hits))
}

func TestTrackerLoopAddsDouble(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{
		{Char: 'a', Position: keys.Pt(0, 0), Index: 0},
		{Char: 'b', Position: keys.Pt(100, 0), Index: 1},
	})

	// dwell on a, one slow circle that never stops, then straight to b
	p := &path{}
	p.hold(0, 0, 6)
	for k := 1; k <= 20; k++ {
		th := float64(k) * 18 * math.Pi / 180
		p.at(8*math.Sin(th), 8-8*math.Cos(th))
	}
	for i := 1; i < 7; i++ {
		p.at(100*float64(i)/7, 0)
	}
	p.hold(100, 0, 6)

	hits := run(NewTracker(layout, DefaultParams()), p.samples)
	require.Equal(t, "aab", chars(hits))
	assert.Equal(t, 1.0, hits[0].Weight)
	assert.Equal(t, DefaultParams().LoopWeight, hits[1].Weight)
	assert.Equal(t, 1.0, hits[2].Weight)
}

func TestTrackerStraightStrokesNeverLoop(t *testing.T) {
	layouts := map[string]keys.KeyLookup{
		"grid": keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry()),
		"ring": keys.NewRingLayout(keys.DefaultRingOrder, keys.DefaultRingGeometry()),
	}
	words := []string{
		"that", "after", "small", "stand", "right", "light", "night", "thing", "there",
		"their", "have", "what", "when", "which", "then", "these", "people", "little",
		"under", "could", "other", "cause", "picture", "country", "learn", "said", "look",
	}

	for name, layout := range layouts {
		tr := NewTracker(layout, DefaultParams())
		for _, word := range words {
			hits := run(tr, Synthesize(word, layout, DefaultSynthOptions()))
			for _, h := range hits {
				assert.NotEqual(t, DefaultParams().LoopWeight, h.Weight, "%s %s: %s", name, word, chars(hits))
			}
		}
	}
}

func TestTrackerReversalIsNotALoop(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{
		{Char: 'a', Position: keys.Pt(0, 0), Index: 0},
		{Char: 'b', Position: keys.Pt(10, 0), Index: 1},
	})

	// scrub back and forth over the same short line
	p := &path{}
	p.hold(0, 0, 4)
	for rep := 0; rep < 4; rep++ {
		for i := 1; i <= 3; i++ {
			p.at(float64(i)*2, 0)
		}
		for i := 2; i >= 0; i-- {
			p.at(float64(i)*2, 0)
		}
	}
	p.hold(10, 0, 4)

	hits := run(NewTracker(layout, DefaultParams()), p.samples)
	for _, h := range hits {
		assert.NotEqual(t, DefaultParams().LoopWeight, h.Weight, chars(hits))
	}
}

func TestTrackerPassThroughs(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	hits := run(NewTracker(grid, DefaultParams()), Synthesize("qp", grid, DefaultSynthOptions()))

	require.Equal(t, "qwertyuiop", chars(hits))
	for _, h := range hits[1 : len(hits)-1] {
		assert.Equal(t, DefaultParams().PassThroughWeight, h.Weight)
		assert.False(t, h.IsAnchor())
	}
}

func TestTrackerPassThroughOncePerGap(t *testing.T) {
	layout := keys.NewLayout([]keys.KeyDescriptor{
		{Char: 'a', Position: keys.Pt(0, 0), Index: 0},
		{Char: 'm', Position: keys.Pt(50, 0), Index: 1},
		{Char: 'b', Position: keys.Pt(100, 0), Index: 2},
	})

	// cross m, swing out of reach, cross m again, all at constant speed
	p := &path{}
	p.hold(0, 0, 6)
	for x := 10.0; x <= 50; x += 10 {
		p.at(x, 0)
	}
	for y := 10.0; y <= 80; y += 10 {
		p.at(50, y)
	}
	for y := 70.0; y >= 0; y -= 10 {
		p.at(50, y)
	}
	for x := 60.0; x <= 100; x += 10 {
		p.at(x, 0)
	}
	p.hold(100, 0, 6)

	hits := run(NewTracker(layout, DefaultParams()), p.samples)
	require.Equal(t, "amb", chars(hits))
	assert.Equal(t, DefaultParams().PassThroughWeight, hits[1].Weight)
}

func TestVelocityMinimaForcesLastAnchor(t *testing.T) {
	tr := NewTracker(keys.NewLayout(nil), DefaultParams())

	// a dwell two samples before the end is moved onto the end
	speeds := []float64{200, 200, 200, 10, 200, 200, 200, 200, 5, 200, 200}
	assert.Equal(t, []int{0, 3, 10}, tr.velocityMinima(speeds))

	// far enough from the end, it stays and the end is appended
	speeds = []float64{200, 200, 200, 10, 200, 200, 200, 200, 200, 200, 200}
	assert.Equal(t, []int{0, 3, 10}, tr.velocityMinima(speeds))
	speeds = []float64{200, 200, 200, 10, 200, 200, 200, 5, 200, 200, 200, 200, 200}
	assert.Equal(t, []int{0, 3, 7, 12}, tr.velocityMinima(speeds))

	// the start anchor is never displaced, even next to the end
	assert.Equal(t, []int{0, 2}, tr.velocityMinima([]float64{5, 5, 5}))
}

func TestTrackerLifecycle(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	tr := NewTracker(grid, DefaultParams())

	tr.AddSample(keys.Pt(10, 10), 0)
	assert.False(t, tr.Active())
	assert.Equal(t, 0, tr.SampleCount())
	assert.Nil(t, tr.Finalize())

	e, _ := keys.ByChar(grid, 'e')
	tr.Begin(e.Position, 1, nil)
	assert.True(t, tr.Active())
	tr.AddSample(e.Position, 0.5) // clamped to the previous timestamp
	assert.Equal(t, 2, tr.SampleCount())
	require.NotEmpty(t, tr.Finalize())

	assert.False(t, tr.Active())
	assert.Nil(t, tr.Finalize())
}

func TestTrackerCurrentKeyFollowsFinger(t *testing.T) {
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	tr := NewTracker(grid, DefaultParams())
	q, _ := keys.ByChar(grid, 'q')
	w, _ := keys.ByChar(grid, 'w')

	tr.Begin(q.Position, 0, nil)
	cur, ok := tr.CurrentKey()
	require.True(t, ok)
	assert.Equal(t, 'q', cur.Char)

	tr.AddSample(w.Position, dt)
	cur, ok = tr.CurrentKey()
	require.True(t, ok)
	assert.Equal(t, 'w', cur.Char)

	tr.AddSample(keys.Pt(-400, -400), 2*dt)
	_, ok = tr.CurrentKey()
	assert.False(t, ok)
}

func TestTrackerLayoutPerSample(t *testing.T) {
	left := keys.NewLayout([]keys.KeyDescriptor{{Char: 'x', Position: keys.Pt(0, 0), Index: 0}})
	right := keys.NewLayout([]keys.KeyDescriptor{{Char: 'y', Position: keys.Pt(0, 0), Index: 1}})

	tr := NewTracker(left, DefaultParams())
	p := &path{}
	p.hold(0, 0, 6)
	tr.Begin(p.samples[0].Position, p.samples[0].Time, nil)
	for _, s := range p.samples[1:3] {
		tr.AddSample(s.Position, s.Time)
	}
	tr.SetLayout(right)
	for _, s := range p.samples[3:] {
		tr.AddSample(s.Position, s.Time)
	}

	hits := tr.Finalize()
	require.NotEmpty(t, hits)
	assert.Equal(t, 'x', hits[0].Key.Char)
	assert.Equal(t, 'y', hits[len(hits)-1].Key.Char)
}

func TestParamsSanitized(t *testing.T) {
	tr := NewTracker(nil, Params{})
	assert.Equal(t, DefaultParams().SmoothingWindow, tr.Params().SmoothingWindow)
	assert.Equal(t, DefaultParams().ReferenceSpeed, tr.Params().ReferenceSpeed)
	assert.InDelta(t, 45.0, DefaultParams().AnchorRadius(), 1e-9)
}

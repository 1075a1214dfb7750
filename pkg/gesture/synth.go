package gesture

import (
	"math"
	"strings"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/keys"
)

// SynthOptions shapes a synthesized gesture.
type SynthOptions struct {
	// SampleRate is the touch sampling rate in Hz.
	SampleRate float64
	// DwellSamples is how many stationary samples are emitted on each letter.
	DwellSamples int
	// TravelSpeed is the finger speed between letters, in units per second.
	TravelSpeed float64
	// LoopDoubles draws a small circle for double letters instead of a
	// quick hop off and back onto the key.
	LoopDoubles bool
	LoopRadius  float64
	LoopSamples int
	// HopDistance is how far the finger leaves the key for a double letter
	// when LoopDoubles is off.
	HopDistance float64
	StartTime   float64
}

// DefaultSynthOptions models a deliberate 60Hz swipe.
func DefaultSynthOptions() SynthOptions {
	return SynthOptions{
		SampleRate:   60,
		DwellSamples: 6,
		TravelSpeed:  900,
		LoopRadius:   8,
		LoopSamples:  16,
		HopDistance:  10,
	}
}

// Synthesize builds the path a careful user would trace for word on layout:
// a dwell on every letter joined by straight, fast strokes. Letters missing
// from the layout are skipped. The result is deterministic.
func Synthesize(word string, layout keys.KeyLookup, opts SynthOptions) []TimestampedPoint {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSynthOptions().SampleRate
	}
	if opts.TravelSpeed <= 0 {
		opts.TravelSpeed = DefaultSynthOptions().TravelSpeed
	}
	if opts.DwellSamples < 1 {
		opts.DwellSamples = 1
	}
	dt := 1 / opts.SampleRate
	step := opts.TravelSpeed * dt

	var out []TimestampedPoint
	now := opts.StartTime
	emit := func(p keys.Point) {
		out = append(out, TimestampedPoint{Position: p, Time: now})
		now += dt
	}
	dwell := func(p keys.Point) {
		for i := 0; i < opts.DwellSamples; i++ {
			emit(p)
		}
	}

	var prev keys.KeyDescriptor
	hasPrev := false
	for _, r := range utils.LettersOnly(strings.ToLower(word)) {
		key, ok := keys.ByChar(layout, r)
		if !ok {
			continue
		}

		switch {
		case !hasPrev:
			dwell(key.Position)
		case prev.Index == key.Index:
			if opts.LoopDoubles {
				loop(key.Position, opts, emit)
			} else {
				hop(key.Position, opts, emit)
			}
			dwell(key.Position)
		default:
			travel(prev.Position, key.Position, step, emit)
			dwell(key.Position)
		}
		prev, hasPrev = key, true
	}
	return out
}

// travel emits evenly spaced points strictly after from, up to and excluding to.
func travel(from, to keys.Point, step float64, emit func(keys.Point)) {
	steps := int(math.Ceil(from.Dist(to) / step))
	for i := 1; i < steps; i++ {
		emit(from.Lerp(to, float64(i)/float64(steps)))
	}
}

func loop(centre keys.Point, opts SynthOptions, emit func(keys.Point)) {
	n := max(opts.LoopSamples, 8)
	// start at the key centre, circle once counter-clockwise and come back
	origin := centre.Add(keys.Pt(0, opts.LoopRadius))
	for i := 0; i <= n; i++ {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		emit(origin.Add(keys.Pt(opts.LoopRadius*math.Cos(a), opts.LoopRadius*math.Sin(a))))
	}
}

func hop(centre keys.Point, opts SynthOptions, emit func(keys.Point)) {
	away := centre.Add(keys.Pt(0, -opts.HopDistance))
	emit(centre.Lerp(away, 0.5))
	emit(away)
	emit(centre.Lerp(away, 0.5))
}

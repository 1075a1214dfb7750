/*
Package keys describes the key regions a gesture is traced over.

A layout is an immutable set of KeyDescriptor values: a character, the centre
of its region in screen coordinates, and a stable index. The gesture tracker
and decoder never look at layout geometry directly; they only ask a KeyLookup
for the key nearest to a point within some radius.

Three families implement KeyLookup:

	layout := keys.NewLayout(descriptors)           // arbitrary host geometry
	ring := keys.NewRingLayout(keys.DefaultRingOrder, keys.DefaultRingGeometry())
	grid := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())

All of them answer Nearest (closest centre) and NearestWeighted (closest centre
biased by English letter frequency, used for live highlighting).
*/
package keys

import (
	"math"
	"unicode"
)

// Point is a position in the host's screen coordinate space.
type Point struct {
	X float64 `msgpack:"x" toml:"x"`
	Y float64 `msgpack:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Dist2 returns the squared distance between p and q.
func (p Point) Dist2(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// KeyDescriptor is one key region of a layout.
type KeyDescriptor struct {
	Char     rune
	Position Point
	Index    int
}

// KeyLookup resolves screen points to keys.
type KeyLookup interface {
	// Keys returns every descriptor of the layout, ordered by Index.
	Keys() []KeyDescriptor

	// Nearest returns the key whose centre is closest to p, if it lies within radius.
	Nearest(p Point, radius float64) (KeyDescriptor, bool)

	// NearestWeighted returns the key within radius maximising
	// LetterFrequency(char) / distance².
	NearestWeighted(p Point, radius float64) (KeyDescriptor, bool)
}

// Layout is a static descriptor set with no geometric structure to exploit.
type Layout struct {
	keys []KeyDescriptor
}

// NewLayout builds a layout from host-supplied descriptors. Characters are
// lowercased; indices are kept as given.
func NewLayout(descriptors []KeyDescriptor) *Layout {
	keys := make([]KeyDescriptor, len(descriptors))
	for i, d := range descriptors {
		d.Char = unicode.ToLower(d.Char)
		keys[i] = d
	}
	return &Layout{keys: keys}
}

func (l *Layout) Keys() []KeyDescriptor {
	return l.keys
}

func (l *Layout) Nearest(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.keys, p, radius, false)
}

func (l *Layout) NearestWeighted(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.keys, p, radius, true)
}

// nearest scans candidates linearly. Ties go to the first candidate seen,
// which keeps results independent of map or goroutine ordering.
func nearest(candidates []KeyDescriptor, p Point, radius float64, weighted bool) (KeyDescriptor, bool) {
	var best KeyDescriptor
	found := false
	bestScore := math.Inf(-1)
	r2 := radius * radius

	for _, k := range candidates {
		d2 := p.Dist2(k.Position)
		if d2 > r2 {
			continue
		}
		var score float64
		if weighted {
			score = LetterFrequency(k.Char) / math.Max(d2, 1)
		} else {
			score = -d2
		}
		if !found || score > bestScore {
			best, bestScore, found = k, score, true
		}
	}
	return best, found
}

// ByChar returns the first descriptor for r in the lookup, if any.
func ByChar(l KeyLookup, r rune) (KeyDescriptor, bool) {
	r = unicode.ToLower(r)
	for _, k := range l.Keys() {
		if k.Char == r {
			return k, true
		}
	}
	return KeyDescriptor{}, false
}

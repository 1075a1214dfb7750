package keys

import (
	"math"
	"sort"
	"unicode"
)

// DefaultRingOrder places the eight most frequent letters on the inner ring
// and the remaining eighteen on the outer ring.
const DefaultRingOrder = "etaoinshrdlcumwfgypbvkjxqz"

// RingGeometry describes a dual-ring layout. Angles are in degrees, 0 pointing
// right and increasing counter-clockwise.
type RingGeometry struct {
	Center      Point     `toml:"center"`
	InnerRadius float64   `toml:"inner_radius"`
	OuterRadius float64   `toml:"outer_radius"`
	InnerSlots  int       `toml:"inner_slots"`
	OuterSlots  int       `toml:"outer_slots"`
	GapAngles   []float64 `toml:"gap_angles"`
	GapWidth    float64   `toml:"gap_width"`
}

// DefaultRingGeometry is a 160pt-wide ring with a backspace gap on the left
// and a reserved gap on the right.
func DefaultRingGeometry() RingGeometry {
	return RingGeometry{
		Center:      Pt(180, 180),
		InnerRadius: 70,
		OuterRadius: 154,
		InnerSlots:  8,
		OuterSlots:  18,
		GapAngles:   []float64{180, 0},
		GapWidth:    36,
	}
}

type arcSegment struct {
	start, length float64
}

// usableSegments returns the arcs between gaps, walking counter-clockwise
// from the end of the gap with the smallest centre angle.
func (g RingGeometry) usableSegments() []arcSegment {
	if len(g.GapAngles) == 0 || g.GapWidth <= 0 {
		return []arcSegment{{start: 0, length: 360}}
	}
	gaps := make([]float64, len(g.GapAngles))
	for i, a := range g.GapAngles {
		gaps[i] = math.Mod(math.Mod(a, 360)+360, 360)
	}
	sort.Float64s(gaps)

	half := g.GapWidth / 2
	segments := make([]arcSegment, 0, len(gaps))
	for i, centre := range gaps {
		next := gaps[(i+1)%len(gaps)]
		if i == len(gaps)-1 {
			next += 360
		}
		start := centre + half
		length := (next - half) - start
		if length <= 0 {
			continue
		}
		segments = append(segments, arcSegment{start: math.Mod(start, 360), length: length})
	}
	return segments
}

// SlotAngles returns the angle of every slot on a ring with n slots.
func (g RingGeometry) SlotAngles(n int) []float64 {
	segments := g.usableSegments()
	usable := 0.0
	for _, s := range segments {
		usable += s.length
	}
	if n <= 0 || usable <= 0 {
		return nil
	}

	spacing := usable / float64(n)
	angles := make([]float64, n)
	for i := range angles {
		remaining := spacing * (float64(i) + 0.5)
		angle := math.NaN()
		for _, s := range segments {
			if remaining <= s.length {
				angle = math.Mod(s.start+remaining, 360)
				break
			}
			remaining -= s.length
		}
		if math.IsNaN(angle) {
			last := segments[len(segments)-1]
			angle = math.Mod(last.start+remaining, 360)
		}
		angles[i] = angle
	}
	return angles
}

// RingLayout arranges keys on two concentric rings.
type RingLayout struct {
	geometry RingGeometry
	inner    []KeyDescriptor
	outer    []KeyDescriptor
	all      []KeyDescriptor
}

// NewRingLayout places order's characters on the rings: the first InnerSlots
// characters on the inner ring, the next OuterSlots on the outer ring. Extra
// characters are ignored.
func NewRingLayout(order string, geometry RingGeometry) *RingLayout {
	chars := []rune(order)
	l := &RingLayout{geometry: geometry}

	place := func(slots int, radius float64, chars []rune) []KeyDescriptor {
		angles := geometry.SlotAngles(slots)
		out := make([]KeyDescriptor, 0, len(angles))
		for i, a := range angles {
			if i >= len(chars) {
				break
			}
			rad := a * math.Pi / 180
			pos := Point{
				X: geometry.Center.X + radius*math.Cos(rad),
				// screen y grows downwards
				Y: geometry.Center.Y - radius*math.Sin(rad),
			}
			out = append(out, KeyDescriptor{
				Char:     unicode.ToLower(chars[i]),
				Position: pos,
				Index:    len(l.all) + len(out),
			})
		}
		return out
	}

	innerCount := min(geometry.InnerSlots, len(chars))
	l.inner = place(geometry.InnerSlots, geometry.InnerRadius, chars[:innerCount])
	l.all = append(l.all, l.inner...)
	l.outer = place(geometry.OuterSlots, geometry.OuterRadius, chars[innerCount:])
	l.all = append(l.all, l.outer...)
	return l
}

func (l *RingLayout) Geometry() RingGeometry {
	return l.geometry
}

func (l *RingLayout) Keys() []KeyDescriptor {
	return l.all
}

func (l *RingLayout) Nearest(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.candidates(p, radius), p, radius, false)
}

func (l *RingLayout) NearestWeighted(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.candidates(p, radius), p, radius, true)
}

// candidates keeps only the rings whose band can hold a key within radius:
// a key on a ring of radius R is never closer than |ρ-R| to a point at polar
// radius ρ.
func (l *RingLayout) candidates(p Point, radius float64) []KeyDescriptor {
	rho := p.Dist(l.geometry.Center)
	nearInner := math.Abs(rho-l.geometry.InnerRadius) <= radius
	nearOuter := math.Abs(rho-l.geometry.OuterRadius) <= radius
	switch {
	case nearInner && nearOuter:
		return l.all
	case nearInner:
		return l.inner
	case nearOuter:
		return l.outer
	default:
		return nil
	}
}

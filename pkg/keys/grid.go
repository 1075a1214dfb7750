package keys

import (
	"math"
	"unicode"
)

// QwertyRows is the standard three-row letter block.
var QwertyRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// GridGeometry positions rows of square keys. Stagger holds the horizontal
// offset of each row in units of Pitch; missing entries mean no offset.
type GridGeometry struct {
	Origin  Point     `toml:"origin"`
	Pitch   float64   `toml:"pitch"`
	Stagger []float64 `toml:"stagger"`
}

// DefaultGridGeometry matches a phone-width QWERTY block with 36pt keys.
func DefaultGridGeometry() GridGeometry {
	return GridGeometry{
		Origin:  Pt(18, 27),
		Pitch:   36,
		Stagger: []float64{0, 0.5, 1.5},
	}
}

type gridRow struct {
	y    float64
	keys []KeyDescriptor
}

// GridLayout arranges keys in staggered rows.
type GridLayout struct {
	geometry GridGeometry
	rows     []gridRow
	all      []KeyDescriptor
}

// NewGridLayout places each row's characters left to right, top to bottom.
func NewGridLayout(rows []string, geometry GridGeometry) *GridLayout {
	l := &GridLayout{geometry: geometry}
	for r, row := range rows {
		offset := 0.0
		if r < len(geometry.Stagger) {
			offset = geometry.Stagger[r] * geometry.Pitch
		}
		y := geometry.Origin.Y + float64(r)*geometry.Pitch
		gr := gridRow{y: y}
		for c, ch := range []rune(row) {
			k := KeyDescriptor{
				Char:     unicode.ToLower(ch),
				Position: Pt(geometry.Origin.X+offset+float64(c)*geometry.Pitch, y),
				Index:    len(l.all),
			}
			gr.keys = append(gr.keys, k)
			l.all = append(l.all, k)
		}
		l.rows = append(l.rows, gr)
	}
	return l
}

func (l *GridLayout) Geometry() GridGeometry {
	return l.geometry
}

func (l *GridLayout) Keys() []KeyDescriptor {
	return l.all
}

func (l *GridLayout) Nearest(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.candidates(p, radius), p, radius, false)
}

func (l *GridLayout) NearestWeighted(p Point, radius float64) (KeyDescriptor, bool) {
	return nearest(l.candidates(p, radius), p, radius, true)
}

// candidates skips rows whose centre line is further than radius from p.
func (l *GridLayout) candidates(p Point, radius float64) []KeyDescriptor {
	var out []KeyDescriptor
	for _, row := range l.rows {
		if math.Abs(row.y-p.Y) <= radius {
			out = append(out, row.keys...)
		}
	}
	return out
}

package keys

import (
	"math"
	"testing"
)

func TestLayoutNearest(t *testing.T) {
	layout := NewLayout([]KeyDescriptor{
		{Char: 'H', Position: Pt(0, 0), Index: 0},
		{Char: 'e', Position: Pt(10, 0), Index: 1},
	})

	testCases := []struct {
		point  Point
		radius float64
		want   rune
		found  bool
	}{
		{Pt(1, 0), 5, 'h', true},
		{Pt(9, 1), 5, 'e', true},
		{Pt(5, 0), 5, 'h', true}, // equidistant, lower index wins
		{Pt(50, 50), 5, 0, false},
	}

	for _, tc := range testCases {
		got, ok := layout.Nearest(tc.point, tc.radius)
		if ok != tc.found {
			t.Errorf("Nearest(%v) found=%v, want %v", tc.point, ok, tc.found)
			continue
		}
		if ok && got.Char != tc.want {
			t.Errorf("Nearest(%v) = %q, want %q", tc.point, got.Char, tc.want)
		}
	}
}

func TestNearestWeightedPrefersFrequentLetters(t *testing.T) {
	layout := NewLayout([]KeyDescriptor{
		{Char: 'e', Position: Pt(0, 0), Index: 0},
		{Char: 'z', Position: Pt(10, 0), Index: 1},
	})

	// Slightly closer to z, but e is far more frequent.
	got, ok := layout.NearestWeighted(Pt(5.5, 0), 20)
	if !ok || got.Char != 'e' {
		t.Fatalf("NearestWeighted = %q (%v), want 'e'", got.Char, ok)
	}

	got, ok = layout.Nearest(Pt(5.5, 0), 20)
	if !ok || got.Char != 'z' {
		t.Fatalf("Nearest = %q (%v), want 'z'", got.Char, ok)
	}
}

func TestRingSlotAnglesSkipGaps(t *testing.T) {
	g := DefaultRingGeometry()
	angles := g.SlotAngles(8)
	want := []float64{36, 72, 108, 144, 216, 252, 288, 324}
	if len(angles) != len(want) {
		t.Fatalf("got %d angles, want %d", len(angles), len(want))
	}
	for i := range want {
		if math.Abs(angles[i]-want[i]) > 1e-9 {
			t.Errorf("angle[%d] = %.3f, want %.3f", i, angles[i], want[i])
		}
	}
}

func TestRingSlotAnglesNoGaps(t *testing.T) {
	g := DefaultRingGeometry()
	g.GapAngles = nil
	angles := g.SlotAngles(4)
	want := []float64{45, 135, 225, 315}
	for i := range want {
		if math.Abs(angles[i]-want[i]) > 1e-9 {
			t.Errorf("angle[%d] = %.3f, want %.3f", i, angles[i], want[i])
		}
	}
}

func TestRingLayoutKeysResolveToThemselves(t *testing.T) {
	ring := NewRingLayout(DefaultRingOrder, DefaultRingGeometry())
	if got := len(ring.Keys()); got != 26 {
		t.Fatalf("ring has %d keys, want 26", got)
	}
	for i, k := range ring.Keys() {
		if k.Index != i {
			t.Errorf("key %q has index %d, want %d", k.Char, k.Index, i)
		}
		got, ok := ring.Nearest(k.Position, 10)
		if !ok || got.Index != k.Index {
			t.Errorf("Nearest(%q centre) = %q (%v)", k.Char, got.Char, ok)
		}
	}

	// The hub of the ring is empty.
	if _, ok := ring.Nearest(ring.Geometry().Center, 20); ok {
		t.Error("expected no key at the ring centre")
	}
}

func TestGridLayoutQwerty(t *testing.T) {
	grid := NewGridLayout(QwertyRows, DefaultGridGeometry())
	if got := len(grid.Keys()); got != 26 {
		t.Fatalf("grid has %d keys, want 26", got)
	}

	a, ok := ByChar(grid, 'A')
	if !ok {
		t.Fatal("ByChar('A') not found")
	}
	want := Pt(18+18, 27+36)
	if a.Position != want {
		t.Errorf("a at %v, want %v", a.Position, want)
	}

	got, ok := grid.Nearest(a.Position.Add(Pt(3, -4)), 18)
	if !ok || got.Char != 'a' {
		t.Errorf("Nearest near a = %q (%v)", got.Char, ok)
	}
}

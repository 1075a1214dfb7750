package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bastiangx/swipeserve/pkg/keys"
)

// ErrUnknownLayout is returned for layout kinds other than ring and grid.
var ErrUnknownLayout = errors.New("unknown layout")

const (
	LayoutRing = "ring"
	LayoutGrid = "grid"
)

// LayoutConfig selects and shapes the built-in key layouts.
type LayoutConfig struct {
	Kind      string            `toml:"kind"`
	RingOrder string            `toml:"ring_order"`
	Ring      keys.RingGeometry `toml:"ring"`
	GridRows  []string          `toml:"grid_rows"`
	Grid      keys.GridGeometry `toml:"grid"`
}

// DefaultLayoutConfig is the dual ring with the frequency-ordered alphabet.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Kind:      LayoutRing,
		RingOrder: keys.DefaultRingOrder,
		Ring:      keys.DefaultRingGeometry(),
		GridRows:  append([]string(nil), keys.QwertyRows...),
		Grid:      keys.DefaultGridGeometry(),
	}
}

// Build returns the layout named kind, or the configured kind when kind is empty.
func (l LayoutConfig) Build(kind string) (keys.KeyLookup, error) {
	if kind == "" {
		kind = l.Kind
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case LayoutRing:
		return keys.NewRingLayout(l.RingOrder, l.Ring), nil
	case LayoutGrid:
		return keys.NewGridLayout(l.GridRows, l.Grid), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, kind)
}

package gesture

// Params tunes the tracker. Distances are in layout units (points), speeds in
// units per second. The defaults come from empirical tuning on a phone-sized
// layout; only their relative magnitudes matter for correctness.
type Params struct {
	// SmoothingWindow is the width of the centered moving average over speed.
	SmoothingWindow int `toml:"smoothing_window"`
	// DwellSpeed is the smoothed speed under which a local minimum counts as a dwell.
	DwellSpeed float64 `toml:"dwell_speed"`
	// ReferenceSpeed maps interior anchor speed to weight: 1 - v/ReferenceSpeed.
	ReferenceSpeed float64 `toml:"reference_speed"`
	// MergeDistance merges minima fewer than this many samples apart.
	MergeDistance int `toml:"merge_distance"`
	// ProximityRadius is the live per-sample key radius.
	ProximityRadius float64 `toml:"proximity_radius"`
	// AnchorRadiusScale widens ProximityRadius when resolving dwell points.
	AnchorRadiusScale float64 `toml:"anchor_radius_scale"`
	// DoublePeakFactor × DwellSpeed is the peak needed between two dwells on
	// the same key to keep both.
	DoublePeakFactor float64 `toml:"double_peak_factor"`
	PassThroughWeight float64 `toml:"pass_through_weight"`
	MinAnchorWeight   float64 `toml:"min_anchor_weight"`
	// LoopWindow is the number of recent samples whose turning is summed for
	// loop detection.
	LoopWindow int `toml:"loop_window"`
	// LoopTurnDegrees is the cumulative turn that marks a loop.
	LoopTurnDegrees float64 `toml:"loop_turn_degrees"`
	LoopWeight      float64 `toml:"loop_weight"`
	// MinTimeDelta floors dt when computing speed.
	MinTimeDelta float64 `toml:"min_time_delta"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		SmoothingWindow:   5,
		DwellSpeed:        120,
		ReferenceSpeed:    200,
		MergeDistance:     4,
		ProximityRadius:   30,
		AnchorRadiusScale: 1.5,
		DoublePeakFactor:  1.5,
		PassThroughWeight: 0.15,
		MinAnchorWeight:   0.1,
		LoopWindow:        20,
		LoopTurnDegrees:   300,
		LoopWeight:        0.8,
		MinTimeDelta:      0.001,
	}
}

// AnchorRadius is the search radius used for velocity minima.
func (p Params) AnchorRadius() float64 {
	return p.ProximityRadius * p.AnchorRadiusScale
}

// sanitized replaces unusable values with defaults so a bad config file can
// never make Finalize divide by zero or loop forever.
func (p Params) sanitized() Params {
	d := DefaultParams()
	if p.SmoothingWindow < 1 {
		p.SmoothingWindow = d.SmoothingWindow
	}
	if p.DwellSpeed <= 0 {
		p.DwellSpeed = d.DwellSpeed
	}
	if p.ReferenceSpeed <= 0 {
		p.ReferenceSpeed = d.ReferenceSpeed
	}
	if p.MergeDistance < 0 {
		p.MergeDistance = d.MergeDistance
	}
	if p.ProximityRadius <= 0 {
		p.ProximityRadius = d.ProximityRadius
	}
	if p.AnchorRadiusScale < 1 {
		p.AnchorRadiusScale = d.AnchorRadiusScale
	}
	if p.DoublePeakFactor <= 0 {
		p.DoublePeakFactor = d.DoublePeakFactor
	}
	if p.LoopWindow < 2 {
		p.LoopWindow = d.LoopWindow
	}
	if p.LoopTurnDegrees <= 0 {
		p.LoopTurnDegrees = d.LoopTurnDegrees
	}
	if p.MinTimeDelta <= 0 {
		p.MinTimeDelta = d.MinTimeDelta
	}
	return p
}

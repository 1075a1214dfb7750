package decoder

// Params weighs the terms of the alignment score. Only relative magnitudes
// matter: an absent letter must cost more than a near-path miss, and the
// secondary end-letter penalty must stay below a near-path miss.
type Params struct {
	// NearPathMiss is charged for a letter whose key is in the gesture but out of order.
	NearPathMiss float64 `toml:"near_path_miss"`
	// AbsentMiss is charged for a letter whose key never appears in the gesture.
	AbsentMiss float64 `toml:"absent_miss"`
	// AlignmentWeight scales the sum of (1 - weight) over matched hits.
	AlignmentWeight float64 `toml:"alignment_weight"`
	// UnmatchedAnchor is multiplied by the weight of every anchor the word skips.
	UnmatchedAnchor float64 `toml:"unmatched_anchor"`
	// Coverage scales the fraction of the gesture left outside the matched span.
	Coverage float64 `toml:"coverage"`
	// LengthBonus is subtracted per collapsed letter.
	LengthBonus float64 `toml:"length_bonus"`
	// FrequencyWeight scales min(ln(1+rank), FrequencyCap).
	FrequencyWeight float64 `toml:"frequency_weight"`
	FrequencyCap    float64 `toml:"frequency_cap"`
	// DoublePenalty is charged per doubled letter whose key the gesture shows only once.
	DoublePenalty float64 `toml:"double_penalty"`
	// SecondaryEndPenalty is added to words ending on the second-to-last anchor.
	SecondaryEndPenalty float64 `toml:"secondary_end_penalty"`
	// ContractionBonus is subtracted from contractions whose stripped form is not a word.
	ContractionBonus float64 `toml:"contraction_bonus"`
	// AnchorWeight is the weight from which a hit counts as an anchor.
	AnchorWeight float64 `toml:"anchor_weight"`
}

// DefaultParams returns the stock scoring weights.
func DefaultParams() Params {
	return Params{
		NearPathMiss:        2.0,
		AbsentMiss:          4.0,
		AlignmentWeight:     1.0,
		UnmatchedAnchor:     1.5,
		Coverage:            2.0,
		LengthBonus:         0.3,
		FrequencyWeight:     0.25,
		FrequencyCap:        10,
		DoublePenalty:       1.0,
		SecondaryEndPenalty: 1.5,
		ContractionBonus:    0.5,
		AnchorWeight:        0.5,
	}
}

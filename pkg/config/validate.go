package config

import (
	"errors"
	"fmt"

	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/charmbracelet/log"
)

// Validate reports every setting that would break decoding or serving.
func (c *Config) Validate() error {
	return errors.Join(
		validateDecoder(c.Decoder),
		validateLayout(c.Layout),
		validateDict(c.Dict),
		validateServer(c.Server),
	)
}

// repair resets each invalid section to its defaults.
func (c *Config) repair() {
	defaults := DefaultConfig()
	if err := validateDecoder(c.Decoder); err != nil {
		log.Warnf("Invalid [decoder] settings, using defaults: %v", err)
		c.Decoder = defaults.Decoder
	}
	if err := validateLayout(c.Layout); err != nil {
		log.Warnf("Invalid [layout] settings, using defaults: %v", err)
		c.Layout = defaults.Layout
	}
	if err := validateDict(c.Dict); err != nil {
		log.Warnf("Invalid [dict] settings, using defaults: %v", err)
		c.Dict = defaults.Dict
	}
	if err := validateServer(c.Server); err != nil {
		log.Warnf("Invalid [server] settings, using defaults: %v", err)
		c.Server = defaults.Server
	}
	if c.CLI.DefaultLimit <= 0 {
		c.CLI.DefaultLimit = defaults.CLI.DefaultLimit
	}
}

func validateDecoder(p decoder.Params) error {
	var errs []error
	if p.NearPathMiss <= 0 {
		errs = append(errs, fmt.Errorf("near_path_miss must be positive, got %g", p.NearPathMiss))
	}
	if p.AbsentMiss <= p.NearPathMiss {
		errs = append(errs, fmt.Errorf("absent_miss (%g) must exceed near_path_miss (%g)", p.AbsentMiss, p.NearPathMiss))
	}
	if p.SecondaryEndPenalty < 0 || p.SecondaryEndPenalty >= p.NearPathMiss {
		errs = append(errs, fmt.Errorf("secondary_end_penalty (%g) must be in [0, near_path_miss)", p.SecondaryEndPenalty))
	}
	if p.AnchorWeight <= 0 || p.AnchorWeight > 1 {
		errs = append(errs, fmt.Errorf("anchor_weight must be in (0, 1], got %g", p.AnchorWeight))
	}
	if p.FrequencyWeight < 0 || p.FrequencyCap < 0 {
		errs = append(errs, errors.New("frequency_weight and frequency_cap must not be negative"))
	}
	return errors.Join(errs...)
}

func validateLayout(l LayoutConfig) error {
	if _, err := l.Build(""); err != nil {
		return err
	}
	if l.Ring.InnerRadius <= 0 || l.Ring.OuterRadius <= l.Ring.InnerRadius {
		return fmt.Errorf("ring radii must satisfy 0 < inner (%g) < outer (%g)", l.Ring.InnerRadius, l.Ring.OuterRadius)
	}
	if l.Grid.Pitch <= 0 {
		return fmt.Errorf("grid pitch must be positive, got %g", l.Grid.Pitch)
	}
	return nil
}

func validateDict(d DictConfig) error {
	if d.MaxWords < 0 {
		return fmt.Errorf("max_words must not be negative, got %d", d.MaxWords)
	}
	if d.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", d.ChunkSize)
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.MaxLimit <= 0 {
		return fmt.Errorf("max_limit must be positive, got %d", s.MaxLimit)
	}
	if s.DefaultLimit <= 0 || s.DefaultLimit > s.MaxLimit {
		return fmt.Errorf("default_limit must be in [1, max_limit], got %d", s.DefaultLimit)
	}
	return nil
}

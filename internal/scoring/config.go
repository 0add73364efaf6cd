// Package scoring implements the layered ScoutScore engine: an
// industry-weighted base score refined by optional persona, CTA-fit, and
// emotional-intent overlays, composed into one final score per prospect.
package scoring

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// WeightTable holds the per-signal weights of one industry. Weights are
// points on the 0-100 score scale and must sum to 100.
type WeightTable struct {
	PainPoint   float64 `yaml:"pain_point"`
	Interest    float64 `yaml:"interest"`
	LifeEvent   float64 `yaml:"life_event"`
	Opportunity float64 `yaml:"opportunity"`
	Engagement  float64 `yaml:"engagement"`
}

// Sum returns the total of all weights in the table.
func (w WeightTable) Sum() float64 {
	return w.PainPoint + w.Interest + w.LifeEvent + w.Opportunity + w.Engagement
}

// OverlayWeights are the fixed combination weights used by the composer.
// They must sum to 1. A disabled overlay's weight folds into the base.
type OverlayWeights struct {
	Base    float64 `yaml:"base"`
	Persona float64 `yaml:"persona"`
	CTA     float64 `yaml:"cta"`
	Emotion float64 `yaml:"emotion"`
}

// DecayConfig holds the time-decay parameters for past interactions.
type DecayConfig struct {
	HalfLifeDays int     `yaml:"half_life_days"`
	Floor        float64 `yaml:"floor"`
}

// Config is the full scoring configuration.
type Config struct {
	Weights map[string]WeightTable `yaml:"industries"`
	Neutral WeightTable            `yaml:"neutral"`
	Overlay OverlayWeights         `yaml:"overlay"`
	Decay   DecayConfig            `yaml:"decay"`
}

// DefaultConfig returns the shipped weight tables. Constants were chosen so
// that buying intent dominates in direct-sales verticals while life events
// dominate in insurance, with the neutral table flat across all signals.
func DefaultConfig() *Config {
	return &Config{
		Weights: map[string]WeightTable{
			"mlm": {
				PainPoint:   25,
				Interest:    20,
				LifeEvent:   15,
				Opportunity: 30,
				Engagement:  10,
			},
			"insurance": {
				PainPoint:   20,
				Interest:    15,
				LifeEvent:   35,
				Opportunity: 20,
				Engagement:  10,
			},
			"real_estate": {
				PainPoint:   15,
				Interest:    20,
				LifeEvent:   30,
				Opportunity: 25,
				Engagement:  10,
			},
			"fitness": {
				PainPoint:   30,
				Interest:    25,
				LifeEvent:   10,
				Opportunity: 20,
				Engagement:  15,
			},
		},
		Neutral: WeightTable{
			PainPoint:   20,
			Interest:    20,
			LifeEvent:   20,
			Opportunity: 20,
			Engagement:  20,
		},
		Overlay: OverlayWeights{
			Base:    0.50,
			Persona: 0.20,
			CTA:     0.15,
			Emotion: 0.15,
		},
		Decay: DecayConfig{
			HalfLifeDays: 30,
			Floor:        0.1,
		},
	}
}

// LoadWeights reads a weight-table file and merges it over the defaults.
// Decoding is strict: unknown signal or section keys fail at load time
// rather than silently evaluating to zero.
func LoadWeights(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: read weights %s", path)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, eris.Wrapf(err, "scoring: parse weights %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TableFor resolves the weight table for a prospect's tagged industry under
// the given active industry. Industry isolation: a tagged industry that does
// not match the active one falls back to the neutral table so mismatched
// weights never cross-contaminate verticals.
func (c *Config) TableFor(tagged, active string) WeightTable {
	if tagged != "" && tagged != active {
		return c.Neutral
	}
	if t, ok := c.Weights[active]; ok {
		return t
	}
	return c.Neutral
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	check := func(name string, t WeightTable) {
		for key, w := range map[string]float64{
			"pain_point":  t.PainPoint,
			"interest":    t.Interest,
			"life_event":  t.LifeEvent,
			"opportunity": t.Opportunity,
			"engagement":  t.Engagement,
		} {
			if w < 0 {
				errs = append(errs, fmt.Sprintf("%s.%s must be >= 0", name, key))
			}
		}
		if sum := t.Sum(); math.Abs(sum-100) > 1 {
			errs = append(errs, fmt.Sprintf("%s weights should sum to 100, got %.1f", name, sum))
		}
	}

	for industry, table := range c.Weights {
		check(industry, table)
	}
	check("neutral", c.Neutral)

	ovSum := c.Overlay.Base + c.Overlay.Persona + c.Overlay.CTA + c.Overlay.Emotion
	if math.Abs(ovSum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("overlay weights should sum to 1, got %.3f", ovSum))
	}
	for name, w := range map[string]float64{
		"overlay.base":    c.Overlay.Base,
		"overlay.persona": c.Overlay.Persona,
		"overlay.cta":     c.Overlay.CTA,
		"overlay.emotion": c.Overlay.Emotion,
	} {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.Decay.HalfLifeDays < 0 {
		errs = append(errs, "decay.half_life_days must be >= 0")
	}
	if c.Decay.Floor < 0 || c.Decay.Floor > 1 {
		errs = append(errs, "decay.floor must be between 0 and 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

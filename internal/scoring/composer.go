package scoring

import (
	"github.com/scoutline/scout-cli/internal/model"
)

// Overlays holds the optional overlay results to fold into a final score.
// A nil entry means the overlay was disabled for this call; its combination
// weight folds into the base score.
type Overlays struct {
	Persona *PersonaResult
	CTA     *CTAResult
	Emotion *EmotionResult
}

// ScoutScore is the composed lead-priority result. The score, rating, and
// breakdown fields mirror the base engine's legacy contract; the remaining
// fields are the overlay additions.
type ScoutScore struct {
	Score     float64            `json:"score"`
	Rating    model.Bucket       `json:"rating"`
	Breakdown map[string]float64 `json:"breakdown"`

	BaseScore    float64  `json:"base_score"`
	PersonaFit   *float64 `json:"persona_fit,omitempty"`
	CTAFit       *float64 `json:"cta_fit,omitempty"`
	Trust        *float64 `json:"trust,omitempty"`
	Persona      string   `json:"persona,omitempty"`
	EmotionState string   `json:"emotional_state,omitempty"`
	SuggestedCTA CTAType  `json:"suggested_cta"`
	RiskFlags    []string `json:"risk_flags,omitempty"`

	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics exposes each layer's raw result plus the effective weights,
// for traceability when composing in debug mode.
type Diagnostics struct {
	Base           BaseResult     `json:"base"`
	Persona        *PersonaResult `json:"persona,omitempty"`
	CTA            *CTAResult     `json:"cta,omitempty"`
	Emotion        *EmotionResult `json:"emotion,omitempty"`
	AppliedWeights OverlayWeights `json:"applied_weights"`
}

// Composer merges the base score and enabled overlay sub-scores into one
// final score using fixed combination weights.
type Composer struct {
	weights OverlayWeights
}

// NewComposer creates a Composer with the config's combination weights.
func NewComposer(cfg *Config) *Composer {
	return &Composer{weights: cfg.Overlay}
}

// Compose combines base and overlays deterministically: identical inputs
// always produce the identical final score and suggested CTA. When the
// CTA-fit overlay proposes a CTA, that suggestion takes precedence over the
// base engine's default.
func (c *Composer) Compose(base BaseResult, ov Overlays) ScoutScore {
	return c.compose(base, ov, false)
}

// ComposeDebug is Compose with per-layer diagnostics attached.
func (c *Composer) ComposeDebug(base BaseResult, ov Overlays) ScoutScore {
	return c.compose(base, ov, true)
}

func (c *Composer) compose(base BaseResult, ov Overlays, debug bool) ScoutScore {
	// Fold disabled overlays' weights into the base so the enabled
	// weights always sum to 1.
	applied := c.weights
	if ov.Persona == nil {
		applied.Base += applied.Persona
		applied.Persona = 0
	}
	if ov.CTA == nil {
		applied.Base += applied.CTA
		applied.CTA = 0
	}
	if ov.Emotion == nil {
		applied.Base += applied.Emotion
		applied.Emotion = 0
	}

	final := base.Score * applied.Base

	out := ScoutScore{
		Breakdown: base.Breakdown,
		BaseScore: base.Score,
	}

	if ov.Persona != nil {
		final += ov.Persona.FitScore * applied.Persona
		fit := ov.Persona.FitScore
		out.PersonaFit = &fit
		out.Persona = ov.Persona.Persona
	}
	if ov.CTA != nil {
		final += ov.CTA.FitScore * applied.CTA
		fit := ov.CTA.FitScore
		out.CTAFit = &fit
	}
	if ov.Emotion != nil {
		final += ov.Emotion.TrustScore * applied.Emotion
		trust := ov.Emotion.TrustScore
		out.Trust = &trust
		out.EmotionState = ov.Emotion.State
		out.RiskFlags = ov.Emotion.RiskFlags
	}

	out.Score = clamp(final, 0, 100)
	out.Rating = model.BucketFor(out.Score)

	// CTA precedence: overlay suggestion wins over the base default.
	if ov.CTA != nil && ov.CTA.SuggestedCTA != "" {
		out.SuggestedCTA = ov.CTA.SuggestedCTA
	} else {
		out.SuggestedCTA = DefaultCTA(base.Rating)
	}

	if debug {
		out.Diagnostics = &Diagnostics{
			Base:           base,
			Persona:        ov.Persona,
			CTA:            ov.CTA,
			Emotion:        ov.Emotion,
			AppliedWeights: applied,
		}
	}
	return out
}

package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
)

func testBase(score float64) BaseResult {
	return BaseResult{
		Score:     score,
		Rating:    model.BucketFor(score),
		Breakdown: map[string]float64{"opportunity": score},
	}
}

func TestComposeAllOverlays(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())

	ov := Overlays{
		Persona: &PersonaResult{Persona: "aspiring_side_hustler", FitScore: 80},
		CTA:     &CTAResult{FitScore: 100, SuggestedCTA: CTASoftInvite},
		Emotion: &EmotionResult{State: EmotionCurious, TrustScore: 70},
	}
	got := c.Compose(testBase(60), ov)

	// 60*0.5 + 80*0.2 + 100*0.15 + 70*0.15 = 71.5
	assert.InDelta(t, 71.5, got.Score, 0.001)
	assert.Equal(t, model.BucketHot, got.Rating)
	assert.Equal(t, CTASoftInvite, got.SuggestedCTA)
	assert.Equal(t, "aspiring_side_hustler", got.Persona)
	assert.Equal(t, EmotionCurious, got.EmotionState)
}

func TestComposeDisabledOverlaysFoldIntoBase(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())

	got := c.Compose(testBase(60), Overlays{})
	assert.InDelta(t, 60, got.Score, 0.001, "base alone must pass through unchanged")
	assert.Nil(t, got.PersonaFit)
	assert.Nil(t, got.CTAFit)
	assert.Nil(t, got.Trust)
}

func TestComposeCTAPrecedence(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())

	// Base would default a hot lead to starter_kit_offer; the overlay's
	// educational_content suggestion must win.
	base := testBase(85)
	require.Equal(t, CTAStarterKitOffer, DefaultCTA(base.Rating))

	got := c.Compose(base, Overlays{
		CTA: &CTAResult{FitScore: 40, SuggestedCTA: CTAEducationalContent, Misaligned: true},
	})
	assert.Equal(t, CTAEducationalContent, got.SuggestedCTA)
}

func TestComposeBaseDefaultCTAWithoutOverlay(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())
	got := c.Compose(testBase(85), Overlays{})
	assert.Equal(t, CTAStarterKitOffer, got.SuggestedCTA)
}

func TestComposeDeterministic(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())
	ov := Overlays{
		Persona: &PersonaResult{Persona: "policy_shopper", FitScore: 55},
		CTA:     &CTAResult{FitScore: 75, SuggestedCTA: CTAFollowUpCheckin},
		Emotion: &EmotionResult{State: EmotionHesitant, TrustScore: 45, RiskFlags: []string{RiskGhosting}},
	}

	first := c.Compose(testBase(48), ov)
	for i := 0; i < 25; i++ {
		again := c.Compose(testBase(48), ov)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.SuggestedCTA, again.SuggestedCTA)
	}
}

func TestComposeDebugDiagnostics(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())
	ov := Overlays{
		Persona: &PersonaResult{Persona: "investor", FitScore: 60},
		Emotion: &EmotionResult{State: EmotionNeutral, TrustScore: 55},
	}

	plain := c.Compose(testBase(50), ov)
	assert.Nil(t, plain.Diagnostics)

	dbg := c.ComposeDebug(testBase(50), ov)
	require.NotNil(t, dbg.Diagnostics)
	assert.Equal(t, ov.Persona, dbg.Diagnostics.Persona)
	assert.Nil(t, dbg.Diagnostics.CTA)
	// CTA disabled: its weight folded into base.
	assert.InDelta(t, 0.65, dbg.Diagnostics.AppliedWeights.Base, 0.001)
	assert.Equal(t, plain.Score, dbg.Score, "debug mode must not change the score")
}

func TestScoutScoreLegacyJSONFields(t *testing.T) {
	t.Parallel()

	c := NewComposer(DefaultConfig())
	data, err := json.Marshal(c.Compose(testBase(77), Overlays{}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "score")
	assert.Contains(t, m, "rating")
	assert.Contains(t, m, "breakdown")
}

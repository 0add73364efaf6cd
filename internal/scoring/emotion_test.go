package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmotionOverlayStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		history []string
		want    string
	}{
		{"excited", []string{"I'm excited, sign me up, can't wait"}, EmotionExcited},
		{"curious", []string{"interested, tell me more about how does this work"}, EmotionCurious},
		{"skeptical", []string{"is this legit? sounds like a pyramid scam"}, EmotionSkeptical},
		{"hesitant", []string{"not sure, let me think about it, busy right now"}, EmotionHesitant},
		{"frustrated", []string{"stop messaging me, this is annoying"}, EmotionFrustrated},
		{"neutral", []string{"received, thank you"}, EmotionNeutral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := EmotionOverlay(tt.history)
			assert.Equal(t, tt.want, res.State)
			assert.Equal(t, trustByState[tt.want], res.TrustScore)
			assert.NotEmpty(t, res.SuggestedTone)
		})
	}
}

func TestEmotionOverlayRiskFlags(t *testing.T) {
	t.Parallel()

	res := EmotionOverlay([]string{"this is a scam and it's too expensive, I'm busy"})
	assert.Contains(t, res.RiskFlags, RiskScamSuspicion)
	assert.Contains(t, res.RiskFlags, RiskPriceObjection)
	assert.Contains(t, res.RiskFlags, RiskGhosting)
}

func TestEmotionOverlayNoFlags(t *testing.T) {
	t.Parallel()

	res := EmotionOverlay([]string{"I'm excited, this is amazing"})
	assert.Empty(t, res.RiskFlags)
}

func TestEmotionOverlayTrustOrdering(t *testing.T) {
	t.Parallel()

	// Trust must strictly decrease from excited down to frustrated.
	assert.Greater(t, trustByState[EmotionExcited], trustByState[EmotionCurious])
	assert.Greater(t, trustByState[EmotionCurious], trustByState[EmotionNeutral])
	assert.Greater(t, trustByState[EmotionNeutral], trustByState[EmotionHesitant])
	assert.Greater(t, trustByState[EmotionHesitant], trustByState[EmotionSkeptical])
	assert.Greater(t, trustByState[EmotionSkeptical], trustByState[EmotionFrustrated])
}

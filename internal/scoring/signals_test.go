package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSignals(t *testing.T) {
	t.Parallel()

	history := []string{
		"I'm so tired of my job and the bills keep piling up",
		"How much is the starter kit? I need extra income",
		"We just had a new baby too",
	}

	sig := DetectSignals(history)

	assert.Contains(t, sig.PainPoints, "burnout")
	assert.Contains(t, sig.PainPoints, "financial_stress")
	assert.Contains(t, sig.Interests, "starter_kit")
	assert.Contains(t, sig.Interests, "side_income")
	assert.Contains(t, sig.LifeEvents, "new_baby")
	assert.Equal(t, OpportunityBusiness, sig.OpportunityType)
}

func TestDetectSignalsOpportunityPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"business beats product", "I want to join and also order products", OpportunityBusiness},
		{"product beats price", "can I order one, how much is it", OpportunityProduct},
		{"price only", "how much does it cost", OpportunityPrice},
		{"nothing", "hello there", OpportunityGeneral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sig := DetectSignals([]string{tt.text})
			assert.Equal(t, tt.want, sig.OpportunityType)
		})
	}
}

func TestDetectSignalsSentiment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "positive", DetectSignals([]string{"I'm excited, this looks great"}).Sentiment)
	assert.Equal(t, "negative", DetectSignals([]string{"sounds like a scam, not interested"}).Sentiment)
	assert.Equal(t, "neutral", DetectSignals([]string{"ok noted"}).Sentiment)
}

func TestDetectSignalsStableOrder(t *testing.T) {
	t.Parallel()

	history := []string{"tired of being broke, so stressed, I hate my job"}
	first := DetectSignals(history)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectSignals(history))
	}
}

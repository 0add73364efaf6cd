package scoring

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
)

func testInput() ProspectInput {
	return ProspectInput{
		Name:           "Maria Santos",
		Industry:       "mlm",
		ActiveIndustry: "mlm",
		Signals: Signals{
			PainPoints:      []string{"financial_stress"},
			Interests:       []string{"starter_kit", "side_income"},
			OpportunityType: OpportunityBusiness,
			Sentiment:       "positive",
		},
		History: []string{"How much is the starter kit?", "I need extra income"},
		Now:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBaseScoreRange(t *testing.T) {
	t.Parallel()

	engine := NewBaseEngine(DefaultConfig())
	res := engine.Score(testInput())

	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
	assert.Equal(t, model.BucketFor(res.Score), res.Rating)
	assert.Len(t, res.Breakdown, 5)
}

func TestBaseScoreIndustryMismatchUsesNeutral(t *testing.T) {
	t.Parallel()

	engine := NewBaseEngine(DefaultConfig())

	matched := testInput()
	mismatched := testInput()
	mismatched.Industry = "insurance" // tagged insurance, scored under mlm

	neutral := testInput()
	neutral.Industry = ""
	neutral.ActiveIndustry = "unknown_vertical"

	mres := engine.Score(mismatched)
	nres := engine.Score(neutral)
	assert.InDelta(t, nres.Score, mres.Score, 0.001, "mismatch must score with neutral weights")

	// And the matched case genuinely differs from neutral, proving the
	// industry table was applied.
	assert.NotEqual(t, engine.Score(matched).Score, mres.Score)
}

func TestBaseScoreTimeDecay(t *testing.T) {
	t.Parallel()

	engine := NewBaseEngine(DefaultConfig())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	fresh := testInput()
	fresh.Interactions = []model.Interaction{{ProspectName: "Maria Santos", Kind: "reply", OccurredAt: now.AddDate(0, 0, -1)}}

	stale := testInput()
	stale.Interactions = []model.Interaction{{ProspectName: "Maria Santos", Kind: "reply", OccurredAt: now.AddDate(0, 0, -90)}}

	assert.Greater(t, engine.Score(fresh).Score, engine.Score(stale).Score,
		"older interactions must contribute less")
}

func TestBaseScoreEmptySignals(t *testing.T) {
	t.Parallel()

	engine := NewBaseEngine(DefaultConfig())
	res := engine.Score(ProspectInput{Name: "Juan Dela Cruz", ActiveIndustry: "mlm"})

	assert.Equal(t, model.BucketCold, res.Rating)
	assert.Less(t, res.Score, model.WarmThreshold)
}

func TestBaseResultLegacyJSONFields(t *testing.T) {
	t.Parallel()

	engine := NewBaseEngine(DefaultConfig())
	data, err := json.Marshal(engine.Score(testInput()))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "score")
	assert.Contains(t, m, "rating")
	assert.Contains(t, m, "breakdown")
}

func TestDefaultCTA(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CTAStarterKitOffer, DefaultCTA(model.BucketHot))
	assert.Equal(t, CTASoftInvite, DefaultCTA(model.BucketWarm))
	assert.Equal(t, CTAFollowUpCheckin, DefaultCTA(model.BucketCold))
}

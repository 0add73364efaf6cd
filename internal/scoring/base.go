package scoring

import (
	"time"

	"github.com/scoutline/scout-cli/internal/model"
)

// ProspectInput carries everything the base engine needs to score one
// extracted entity.
type ProspectInput struct {
	Name           string
	Industry       string // prospect's tagged industry, "" when untagged
	ActiveIndustry string
	Signals        Signals
	History        []string
	Interactions   []model.Interaction
	Now            time.Time
}

// BaseResult is the industry-weighted base score. The score, rating, and
// breakdown JSON fields predate the overlay system and must stay stable for
// legacy consumers.
type BaseResult struct {
	Score     float64            `json:"score"`
	Rating    model.Bucket       `json:"rating"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// BaseEngine computes industry-weighted base scores.
type BaseEngine struct {
	cfg *Config
}

// NewBaseEngine creates a BaseEngine with the given configuration.
func NewBaseEngine(cfg *Config) *BaseEngine {
	return &BaseEngine{cfg: cfg}
}

// Score computes the base score for a prospect. Each signal category
// contributes a 0-1 component scaled by its industry weight; the engagement
// component is additionally decayed by the age of the most recent
// interaction.
func (e *BaseEngine) Score(in ProspectInput) BaseResult {
	table := e.cfg.TableFor(in.Industry, in.ActiveIndustry)

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	components := map[string]float64{
		"pain_point":  saturating(len(in.Signals.PainPoints), 2),
		"interest":    saturating(len(in.Signals.Interests), 2),
		"life_event":  saturating(len(in.Signals.LifeEvents), 2),
		"opportunity": opportunityComponent(in.Signals.OpportunityType),
		"engagement":  e.engagementComponent(in, now),
	}

	breakdown := map[string]float64{
		"pain_point":  components["pain_point"] * table.PainPoint,
		"interest":    components["interest"] * table.Interest,
		"life_event":  components["life_event"] * table.LifeEvent,
		"opportunity": components["opportunity"] * table.Opportunity,
		"engagement":  components["engagement"] * table.Engagement,
	}

	var score float64
	for _, pts := range breakdown {
		score += pts
	}
	score = clamp(score, 0, 100)

	return BaseResult{
		Score:     score,
		Rating:    model.BucketFor(score),
		Breakdown: breakdown,
	}
}

// DefaultCTA is the call-to-action the base engine proposes for a lead
// temperature when no CTA-fit overlay runs. An overlay suggestion always
// takes precedence over this.
func DefaultCTA(rating model.Bucket) CTAType {
	switch rating {
	case model.BucketHot:
		return CTAStarterKitOffer
	case model.BucketWarm:
		return CTASoftInvite
	default:
		return CTAFollowUpCheckin
	}
}

// engagementComponent measures conversation volume, decayed by the age of
// the most recent prior interaction. A prospect with no recorded
// interactions is treated as engaging right now.
func (e *BaseEngine) engagementComponent(in ProspectInput, now time.Time) float64 {
	volume := saturating(len(in.History)+len(in.Interactions), 5)

	var lastTouch time.Time
	for _, it := range in.Interactions {
		if it.OccurredAt.After(lastTouch) {
			lastTouch = it.OccurredAt
		}
	}
	return volume * DecayFactor(lastTouch, now, e.cfg.Decay)
}

func opportunityComponent(kind string) float64 {
	switch kind {
	case OpportunityBusiness:
		return 1.0
	case OpportunityProduct:
		return 0.8
	case OpportunityPrice:
		return 0.6
	default:
		return 0.2
	}
}

// saturating maps a count onto [0,1], reaching 1 at full.
func saturating(count, full int) float64 {
	if count >= full {
		return 1
	}
	return float64(count) / float64(full)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

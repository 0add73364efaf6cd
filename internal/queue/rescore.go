package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/resilience"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/internal/store"
)

// KindRescore re-runs the scoring engine over a stored prospect, typically
// after a weight-table change or an industry switch.
const KindRescore = "rescore"

// RescorePayload is the queue payload for KindRescore items.
type RescorePayload struct {
	ProspectID     string `json:"prospect_id"`
	ActiveIndustry string `json:"active_industry,omitempty"`
}

// NewRescoreHandler builds the KindRescore handler. defaultIndustry applies
// when the payload does not override the active industry.
func NewRescoreHandler(st store.Store, engine *scoring.Engine, defaultIndustry string, opts scoring.Options) Handler {
	return func(ctx context.Context, item model.QueueItem) error {
		var payload RescorePayload
		if err := json.Unmarshal(item.Payload, &payload); err != nil {
			return resilience.MarkPermanent(eris.Wrap(err, "rescore: decode payload"))
		}
		if payload.ProspectID == "" {
			return resilience.MarkPermanent(eris.New("rescore: missing prospect_id"))
		}

		industry := payload.ActiveIndustry
		if industry == "" {
			industry = defaultIndustry
		}

		prospect, err := st.GetProspect(ctx, payload.ProspectID)
		if err != nil {
			err = eris.Wrapf(err, "rescore: load prospect %s", payload.ProspectID)
			if errors.Is(err, store.ErrNotFound) {
				return resilience.MarkPermanent(err)
			}
			return err
		}

		var history []string
		if prospect.Snippet != "" {
			history = []string{prospect.Snippet}
		}

		result, signals := engine.ScoreProspect(scoring.ProspectInput{
			Name:           prospect.FullName,
			ActiveIndustry: industry,
			Signals: scoring.Signals{
				PainPoints:      prospect.Metadata.PainPoints,
				Interests:       prospect.Metadata.Interests,
				LifeEvents:      prospect.Metadata.LifeEvents,
				OpportunityType: prospect.Metadata.OpportunityType,
				Sentiment:       prospect.Metadata.Sentiment,
			},
			History: history,
		}, opts)

		meta := model.ProspectMetadata{
			Bucket:          result.Rating,
			PainPoints:      signals.PainPoints,
			Interests:       signals.Interests,
			LifeEvents:      signals.LifeEvents,
			OpportunityType: signals.OpportunityType,
			Sentiment:       signals.Sentiment,
		}
		if err := st.UpdateProspectScore(ctx, prospect.ID, result.Score, result.Rating, meta); err != nil {
			return eris.Wrapf(err, "rescore: update prospect %s", prospect.ID)
		}

		zap.L().Info("rescore: prospect updated",
			zap.String("prospect_id", prospect.ID),
			zap.Float64("old_score", prospect.Score),
			zap.Float64("new_score", result.Score),
			zap.String("bucket", string(result.Rating)),
		)
		return nil
	}
}

// Package pipeline runs the staged scan flow: extract text, detect names,
// score prospects, persist results. Progress is recorded as append-only
// status events so callers can poll a scan without the pipeline knowing who
// is watching.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/extract"
	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/internal/store"
)

// Processor executes scans against a store using a configured scoring engine.
type Processor struct {
	store          store.Store
	engine         *scoring.Engine
	activeIndustry string
	scoreOpts      scoring.Options
}

// New creates a Processor. activeIndustry selects the weight table and
// persona catalog applied to every prospect in the scan.
func New(st store.Store, engine *scoring.Engine, activeIndustry string, opts scoring.Options) *Processor {
	return &Processor{
		store:          st,
		engine:         engine,
		activeIndustry: activeIndustry,
		scoreOpts:      opts,
	}
}

// Run executes the full scan pipeline for one scan record. The scan must
// already exist; Run drives it from queued to a terminal status. Any stage
// error fails the scan exactly once and is returned to the caller.
func (p *Processor) Run(ctx context.Context, scanID, rawText string) error {
	log := zap.L().With(zap.String("scan_id", scanID))
	log.Info("pipeline: starting scan")
	start := time.Now()

	if err := p.store.UpdateScanStatus(ctx, scanID, model.ScanStatusProcessing); err != nil {
		return eris.Wrap(err, "pipeline: mark processing")
	}

	// Stage event helper. A failed event write is logged but never aborts
	// the scan; progress reporting is best-effort, the work is not.
	setStage := func(stage model.Stage) {
		if _, err := p.store.AppendStatusEvent(ctx, scanID, stage, ""); err != nil {
			log.Warn("pipeline: failed to append status event",
				zap.String("stage", string(stage)), zap.Error(err))
		}
	}

	fail := func(stage string, err error) error {
		setStage(model.StageFailed)
		if failErr := p.store.FailScan(ctx, scanID); failErr != nil {
			log.Warn("pipeline: failed to mark scan failed", zap.Error(failErr))
		}
		log.Error("pipeline: scan failed", zap.String("stage", stage), zap.Error(err))
		return eris.Wrapf(err, "pipeline: %s", stage)
	}

	// Stage 1: extract text.
	setStage(model.StageExtractingText)
	text := strings.TrimSpace(rawText)
	if text == "" {
		return fail("extract text", eris.New("empty source text"))
	}

	// Stage 2: detect names.
	setStage(model.StageDetectingNames)
	names := extract.Names(text)
	log.Info("pipeline: detected names", zap.Int("count", len(names)))

	// Stage 3: score and persist each prospect.
	setStage(model.StageScoringProspects)
	var counts model.LeadCounts
	for _, name := range names {
		history := extract.Mentions(text, name)

		result, signals := p.engine.ScoreProspect(scoring.ProspectInput{
			Name:           name,
			ActiveIndustry: p.activeIndustry,
			History:        history,
		}, p.scoreOpts)

		prospect := &model.Prospect{
			ScanID:   scanID,
			FullName: name,
			Score:    result.Score,
			Bucket:   result.Rating,
			Metadata: model.ProspectMetadata{
				Bucket:          result.Rating,
				PainPoints:      signals.PainPoints,
				Interests:       signals.Interests,
				LifeEvents:      signals.LifeEvents,
				OpportunityType: signals.OpportunityType,
				Sentiment:       signals.Sentiment,
			},
			Snippet: extract.Snippet(text, name),
		}
		if err := p.store.InsertProspect(ctx, prospect); err != nil {
			return fail("score prospects", err)
		}
		counts.Add(result.Rating)
	}

	// Terminal stage: the completed event precedes the status flip because
	// terminal scans reject further events.
	setStage(model.StageCompleted)
	if err := p.store.CompleteScan(ctx, scanID, counts); err != nil {
		return fail("complete scan", err)
	}

	log.Info("pipeline: scan complete",
		zap.Int("prospects", counts.Total),
		zap.Int("hot", counts.Hot),
		zap.Int("warm", counts.Warm),
		zap.Int("cold", counts.Cold),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/scoutline/scout-cli/internal/pipeline"
	"github.com/scoutline/scout-cli/internal/queue"
	"github.com/scoutline/scout-cli/internal/scoring"
	"github.com/scoutline/scout-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("cli"); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "scout.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine builds the scoring engine from config, loading a weights file
// over the built-in defaults when one is configured.
func initEngine() (*scoring.Engine, error) {
	scoringCfg := scoring.DefaultConfig()
	if cfg.Scoring.WeightsFile != "" {
		loaded, err := scoring.LoadWeights(cfg.Scoring.WeightsFile)
		if err != nil {
			return nil, eris.Wrap(err, "load weights file")
		}
		scoringCfg = loaded
	}
	if err := scoringCfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "validate scoring config")
	}
	return scoring.NewEngine(scoringCfg), nil
}

func scoreOptions() scoring.Options {
	return scoring.Options{
		DisablePersona: cfg.Scoring.DisablePersona,
		DisableCTA:     cfg.Scoring.DisableCTA,
		DisableEmotion: cfg.Scoring.DisableEmotion,
	}
}

// initPipeline wires the store, engine, pipeline processor, and queue
// processor used by the scan, batch, queue, and serve commands.
type env struct {
	Store    store.Store
	Engine   *scoring.Engine
	Pipeline *pipeline.Processor
	Queue    *queue.Processor
}

func (e *env) Close() {
	_ = e.Store.Close()
}

func initPipeline(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	engine, err := initEngine()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	proc := pipeline.New(st, engine, cfg.Scoring.ActiveIndustry, scoreOptions())

	var limiter *rate.Limiter
	if cfg.Queue.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Queue.RatePerSec), 1)
	}
	qproc := queue.NewProcessor(st, limiter)
	qproc.Register(queue.KindRescore, queue.NewRescoreHandler(st, engine, cfg.Scoring.ActiveIndustry, scoreOptions()))

	return &env{Store: st, Engine: engine, Pipeline: proc, Queue: qproc}, nil
}

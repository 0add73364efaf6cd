// Package queue drains the persisted retry queue. Items are claimed
// atomically, dispatched to a handler by kind, and either completed or
// released back with a classified error message.
package queue

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/resilience"
	"github.com/scoutline/scout-cli/internal/store"
)

// Handler processes one claimed queue item.
type Handler func(ctx context.Context, item model.QueueItem) error

// BatchResult summarizes one ProcessBatch pass.
type BatchResult struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Errored   int `json:"errored"`
}

// Processor claims and dispatches queue items.
type Processor struct {
	store    store.Store
	handlers map[string]Handler
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
}

// NewProcessor creates a Processor. limiter throttles item dispatch and may
// be nil for unthrottled processing.
func NewProcessor(st store.Store, limiter *rate.Limiter) *Processor {
	return &Processor{
		store:    st,
		handlers: make(map[string]Handler),
		limiter:  limiter,
		retry:    resilience.DefaultRetryConfig(),
	}
}

// Register installs the handler for a queue item kind, replacing any
// previous handler for that kind.
func (p *Processor) Register(kind string, h Handler) {
	p.handlers[kind] = h
}

// ProcessBatch claims up to limit pending items at or above minPriority and
// runs each through its handler. A failing item is released back to the
// queue (or terminally failed once its attempts are spent) and never aborts
// the rest of the batch.
func (p *Processor) ProcessBatch(ctx context.Context, limit, minPriority int) (BatchResult, error) {
	log := zap.L().With(zap.String("component", "queue"))

	claimCfg := p.retry
	claimCfg.OnRetry = resilience.RetryLogger("queue", "claim")
	items, err := resilience.DoVal(ctx, claimCfg, func(ctx context.Context) ([]model.QueueItem, error) {
		return p.store.ClaimQueueItems(ctx, limit, minPriority)
	})
	if err != nil {
		return BatchResult{}, eris.Wrap(err, "queue: claim batch")
	}

	result := BatchResult{Total: len(items)}
	for _, item := range items {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return result, eris.Wrap(err, "queue: limiter wait")
			}
		}

		if err := p.processItem(ctx, item); err != nil {
			result.Errored++
			log.Warn("queue: item failed",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Int("attempts", item.Attempts),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
	}

	log.Info("queue: batch complete",
		zap.Int("total", result.Total),
		zap.Int("processed", result.Processed),
		zap.Int("errored", result.Errored),
	)
	return result, nil
}

// processItem dispatches one claimed item. The item's attempt counter was
// already incremented by the claim.
func (p *Processor) processItem(ctx context.Context, item model.QueueItem) error {
	handler, ok := p.handlers[item.Kind]
	if !ok {
		// Retrying cannot conjure up a handler.
		err := resilience.MarkPermanent(eris.Errorf("queue: no handler for kind %q", item.Kind))
		p.release(ctx, item, err)
		return err
	}

	if err := handler(ctx, item); err != nil {
		p.release(ctx, item, err)
		return err
	}

	if err := p.store.CompleteQueueItem(ctx, item.ID); err != nil {
		return eris.Wrapf(err, "queue: complete item %s", item.ID)
	}
	return nil
}

// release returns a failed item to the queue with a classified error
// message. The item fails terminally only once its attempt budget is spent
// or the error is explicitly marked permanent; everything else goes back to
// pending for a later batch.
func (p *Processor) release(ctx context.Context, item model.QueueItem, cause error) {
	class := resilience.ClassifyError(cause)
	exhausted := item.Exhausted() || resilience.IsPermanent(cause)

	errMsg := class + ": " + cause.Error()
	if err := p.store.ReleaseQueueItem(ctx, item.ID, errMsg, exhausted); err != nil {
		zap.L().Error("queue: failed to release item",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
	}
}

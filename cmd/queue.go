package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Work the retry queue",
}

// -- queue process --

var queueProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Claim and process a batch of pending queue items",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		minPriority, _ := cmd.Flags().GetInt("min-priority")
		if limit <= 0 {
			limit = cfg.Queue.BatchSize
		}

		result, err := e.Queue.ProcessBatch(ctx, limit, minPriority)
		if err != nil {
			return eris.Wrap(err, "queue process")
		}

		zap.L().Info("queue batch complete",
			zap.Int("total", result.Total),
			zap.Int("processed", result.Processed),
			zap.Int("errored", result.Errored),
		)
		return nil
	},
}

// -- queue rescore --

var queueRescoreCmd = &cobra.Command{
	Use:   "rescore <prospect-id>",
	Short: "Enqueue a prospect for rescoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		// Fail fast on unknown prospects instead of queueing a dead item.
		prospect, err := st.GetProspect(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "queue rescore")
		}

		industry, _ := cmd.Flags().GetString("industry")
		priority, _ := cmd.Flags().GetInt("priority")

		payload, err := json.Marshal(queue.RescorePayload{
			ProspectID:     prospect.ID,
			ActiveIndustry: industry,
		})
		if err != nil {
			return eris.Wrap(err, "queue rescore: encode payload")
		}

		item, err := st.Enqueue(ctx, queue.KindRescore, payload, priority, cfg.Queue.MaxAttempts)
		if err != nil {
			return eris.Wrap(err, "queue rescore")
		}

		zap.L().Info("rescore queued",
			zap.String("item_id", item.ID),
			zap.String("prospect_id", prospect.ID),
			zap.Int("priority", priority),
		)
		return nil
	},
}

func init() {
	queueProcessCmd.Flags().Int("limit", 0, "max items to claim (default: queue.batch_size)")
	queueProcessCmd.Flags().Int("min-priority", 0, "only claim items at or above this priority")

	queueRescoreCmd.Flags().String("industry", "", "override the active industry for this rescore")
	queueRescoreCmd.Flags().Int("priority", 0, "queue priority, higher runs first")

	queueCmd.AddCommand(queueProcessCmd)
	queueCmd.AddCommand(queueRescoreCmd)
	rootCmd.AddCommand(queueCmd)
}

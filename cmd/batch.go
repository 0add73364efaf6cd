package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scoutline/scout-cli/internal/model"
)

var (
	batchConcurrency int
	batchUser        string
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Scan multiple text files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		return processScanBatch(ctx, e, args, batchConcurrency)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "max number of files scanned at once")
	batchCmd.Flags().StringVar(&batchUser, "user", "cli", "user ID to attribute the scans to")
	rootCmd.AddCommand(batchCmd)
}

// processScanBatch scans the given files concurrently. Individual file
// failures are logged and counted but never abort the batch.
func processScanBatch(ctx context.Context, e *env, files []string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("files", len(files)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, file := range files {
		file := file
		g.Go(func() error {
			log := zap.L().With(zap.String("file", file))

			scan, err := scanFileOnce(gctx, e, file)
			if err != nil {
				failed.Add(1)
				log.Error("scan failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("scan complete",
				zap.String("scan_id", scan.ID),
				zap.Int("prospects", scan.Counts.Total),
				zap.Int("hot", scan.Counts.Hot),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

func scanFileOnce(ctx context.Context, e *env, file string) (*model.Scan, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, eris.Wrapf(err, "read input file %s", file)
	}

	source := model.SourceDescriptor{Type: model.SourceTypeFile, PayloadRef: file}
	scan, err := e.Store.CreateScan(ctx, uuid.NewString(), batchUser, source)
	if err != nil {
		return nil, eris.Wrap(err, "create scan")
	}

	if err := e.Pipeline.Run(ctx, scan.ID, string(data)); err != nil {
		return nil, err
	}
	return e.Store.GetScan(ctx, scan.ID)
}

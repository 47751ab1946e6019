package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/store"
)

var (
	batchLimit       int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Build profiles for all unprocessed submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := env.Store.ListSubmissions(ctx, store.SubmissionFilter{
			Status: model.SubmissionStatusSubmitted,
			Limit:  batchLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list pending submissions")
		}

		return processBatch(ctx, env, subs, batchConcurrency)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max submissions to process")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "submissions processed in parallel")
	rootCmd.AddCommand(batchCmd)
}

// processBatch builds profiles for the given submissions concurrently. An
// individual failure marks its submission failed without aborting the batch.
func processBatch(ctx context.Context, env *appEnv, subs []model.FormSubmission, concurrency int) error {
	if len(subs) == 0 {
		zap.L().Info("no pending submissions")
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("submissions", len(subs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			log := zap.L().With(zap.String("submission_id", sub.ID))

			profile, err := env.Builder.Build(gctx, sub.FormData)
			if err != nil {
				failed.Add(1)
				log.Error("profile build failed", zap.Error(err))
				markSubmissionFailed(gctx, env, sub.ID)
				return nil
			}

			rec, err := env.Store.SaveProfile(gctx, sub.ID, profile)
			if err != nil {
				failed.Add(1)
				log.Error("save profile", zap.Error(err))
				markSubmissionFailed(gctx, env, sub.ID)
				return nil
			}
			if err := env.Store.UpdateSubmissionStatus(gctx, sub.ID, model.SubmissionStatusProcessed); err != nil {
				log.Warn("update submission status", zap.Error(err))
			}

			succeeded.Add(1)
			log.Info("profile built",
				zap.String("profile_id", rec.ID),
				zap.Float64("completeness", profile.ProfileMetadata.CompletenessScore),
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

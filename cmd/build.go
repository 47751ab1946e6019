package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/pkg/strategy"
)

var (
	buildFile         string
	buildSubmissionID string
	buildSave         bool
	buildWithStrategy bool
)

var buildCmd = &cobra.Command{
	Use:   "build [description]",
	Short: "Build a complete business profile from an intake form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if buildSubmissionID != "" && (buildFile != "" || len(args) > 0) {
			return eris.New("provide either --submission or a form, not both")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		form, err := resolveBuildForm(ctx, env, args)
		if err != nil {
			return err
		}

		profile, err := env.Builder.Build(ctx, form)
		if err != nil {
			if buildSubmissionID != "" {
				markSubmissionFailed(ctx, env, buildSubmissionID)
			}
			return err
		}

		if buildSave || buildSubmissionID != "" {
			rec, err := env.Store.SaveProfile(ctx, buildSubmissionID, profile)
			if err != nil {
				return eris.Wrap(err, "save profile")
			}
			if buildSubmissionID != "" {
				if err := env.Store.UpdateSubmissionStatus(ctx, buildSubmissionID, model.SubmissionStatusProcessed); err != nil {
					zap.L().Warn("update submission status", zap.Error(err))
				}
			}
			zap.L().Info("profile saved", zap.String("profile_id", rec.ID))
		}

		if buildWithStrategy {
			resp, err := env.Strategy.Generate(ctx, strategy.GenerateRequest{
				SMEProfile: profileMap(profile),
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"profile": profile, "strategy": resp})
		}

		return printJSON(profile)
	},
}

func resolveBuildForm(ctx context.Context, env *appEnv, args []string) (model.FormData, error) {
	if buildSubmissionID != "" {
		sub, err := env.Store.GetSubmission(ctx, buildSubmissionID)
		if err != nil {
			return model.FormData{}, eris.Wrapf(err, "load submission %s", buildSubmissionID)
		}
		return sub.FormData, nil
	}
	return formFromArgs(args, buildFile)
}

func markSubmissionFailed(ctx context.Context, env *appEnv, id string) {
	if err := env.Store.UpdateSubmissionStatus(ctx, id, model.SubmissionStatusFailed); err != nil {
		zap.L().Warn("update submission status",
			zap.String("submission_id", id),
			zap.Error(err),
		)
	}
}

// profileMap round-trips the typed profile through JSON for the schemaless
// strategy payload.
func profileMap(p *model.BusinessProfile) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func init() {
	buildCmd.Flags().StringVar(&buildFile, "file", "", "JSON file with the intake form")
	buildCmd.Flags().StringVar(&buildSubmissionID, "submission", "", "build from a stored submission ID")
	buildCmd.Flags().BoolVar(&buildSave, "save", false, "persist the built profile")
	buildCmd.Flags().BoolVar(&buildWithStrategy, "strategy", false, "also request a strategy for the built profile")
	rootCmd.AddCommand(buildCmd)
}

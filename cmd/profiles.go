package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/pkg/strategy"
)

var (
	profilesLimit  int
	profilesOffset int
	strategyFrom   string
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect stored business profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.Store.ListProfiles(cmd.Context(), profilesLimit, profilesOffset)
		if err != nil {
			return eris.Wrap(err, "list profiles")
		}
		return printJSON(records)
	},
}

var profilesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Store.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get profile %s", args[0])
		}
		return printJSON(rec)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.DeleteProfile(cmd.Context(), args[0]); err != nil {
			return eris.Wrapf(err, "delete profile %s", args[0])
		}
		zap.L().Info("profile deleted", zap.String("id", args[0]))
		return nil
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy [profile-id]",
	Short: "Request a marketing strategy for a stored profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		// The generator accepts either a profile payload or a submission
		// reference it resolves on its own side.
		if strategyFrom != "" {
			resp, err := env.Strategy.FromSubmission(cmd.Context(), strategyFrom)
			if err != nil {
				return err
			}
			return printJSON(resp)
		}

		if len(args) == 0 {
			return eris.New("provide a profile ID or --from-submission")
		}

		rec, err := env.Store.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get profile %s", args[0])
		}
		resp, err := env.Strategy.Generate(cmd.Context(), strategy.GenerateRequest{
			SMEProfile: profileMap(rec.Profile),
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	profilesCmd.PersistentFlags().IntVar(&profilesLimit, "limit", 0, "max profiles to return")
	profilesCmd.PersistentFlags().IntVar(&profilesOffset, "offset", 0, "number of profiles to skip")
	strategyCmd.Flags().StringVar(&strategyFrom, "from-submission", "", "resolve the profile from a submission ID on the generator side")

	profilesCmd.AddCommand(profilesListCmd, profilesGetCmd, profilesDeleteCmd)
	rootCmd.AddCommand(profilesCmd, strategyCmd)
}

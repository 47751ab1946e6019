package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/store"
)

var (
	subsStatus string
	subsLimit  int
	subsOffset int
	exportOut  string
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Inspect and manage stored intake submissions",
}

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, optionally filtered by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := listSubmissions(cmd, env)
		if err != nil {
			return err
		}
		return printJSON(subs)
	},
}

var submissionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one submission, with its profile when built",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		sub, err := env.Store.GetSubmission(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get submission %s", args[0])
		}

		out := map[string]any{"submission": sub}
		if rec, err := env.Store.GetProfileBySubmission(cmd.Context(), args[0]); err == nil {
			out["profile"] = rec
		}
		return printJSON(out)
	},
}

var submissionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.DeleteSubmission(cmd.Context(), args[0]); err != nil {
			return eris.Wrapf(err, "delete submission %s", args[0])
		}
		zap.L().Info("submission deleted", zap.String("id", args[0]))
		return nil
	},
}

var submissionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show submission counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Store.SubmissionStats(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "submission stats")
		}
		return printJSON(stats)
	},
}

var submissionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export submissions to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := listSubmissions(cmd, env)
		if err != nil {
			return err
		}

		if err := writeSubmissionsXLSX(exportOut, subs); err != nil {
			return err
		}
		zap.L().Info("submissions exported",
			zap.Int("count", len(subs)),
			zap.String("file", exportOut),
		)
		return nil
	},
}

func listSubmissions(cmd *cobra.Command, env *appEnv) ([]model.FormSubmission, error) {
	filter := store.SubmissionFilter{
		Status: model.SubmissionStatus(subsStatus),
		Limit:  subsLimit,
		Offset: subsOffset,
	}
	if filter.Status != "" && !model.ValidSubmissionStatus(filter.Status) {
		return nil, eris.Errorf("unknown status %q", subsStatus)
	}

	subs, err := env.Store.ListSubmissions(cmd.Context(), filter)
	if err != nil {
		return nil, eris.Wrap(err, "list submissions")
	}
	return subs, nil
}

func writeSubmissionsXLSX(path string, subs []model.FormSubmission) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Submissions")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Business Name", "Status", "Location", "Budget", "Platforms", "Created At", "Description"} {
		header.AddCell().SetString(h)
	}

	for _, sub := range subs {
		row := sheet.AddRow()
		row.AddCell().SetString(sub.ID)
		row.AddCell().SetString(sub.FormData.BusinessName)
		row.AddCell().SetString(string(sub.Status))
		row.AddCell().SetString(sub.FormData.Location)
		row.AddCell().SetString(sub.FormData.MonthlyBudget)
		row.AddCell().SetString(strings.Join(sub.FormData.Platforms, ", "))
		row.AddCell().SetString(sub.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(sub.FormData.Description)
	}

	if err := wb.Save(path); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func init() {
	submissionsCmd.PersistentFlags().StringVar(&subsStatus, "status", "", "filter by status (submitted, processed, failed)")
	submissionsCmd.PersistentFlags().IntVar(&subsLimit, "limit", 0, "max submissions to return")
	submissionsCmd.PersistentFlags().IntVar(&subsOffset, "offset", 0, "number of submissions to skip")
	submissionsExportCmd.Flags().StringVar(&exportOut, "out", "submissions.xlsx", "output workbook path")

	submissionsCmd.AddCommand(submissionsListCmd, submissionsGetCmd, submissionsDeleteCmd, submissionsStatsCmd, submissionsExportCmd)
	rootCmd.AddCommand(submissionsCmd)
}
